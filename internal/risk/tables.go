package risk

// Static data tables. Loaded once at process start and treated as immutable;
// the core tolerates empty tables (the affected check reports nothing).

// TablesVersion identifies the bundled data snapshot in reports and doctor
// output.
const TablesVersion = "2026.08.1"

// MaliciousEntry describes a known-malicious package name.
type MaliciousEntry struct {
	Impersonates string
	Reason       string
	Severity     Severity
}

// VulnRecord is one known-vulnerability advisory for a package. Affected and
// Fixed are reported verbatim; the scanner has no notion of an installed
// version.
type VulnRecord struct {
	ID       string
	Title    string
	Affected string
	Fixed    string
	Severity Severity
	Advice   string
}

// PatternRule is a declarative matching rule: a regular expression plus its
// classification. Rules are data; a single generic matcher interprets them.
type PatternRule struct {
	Pattern  string
	Type     string
	Severity Severity
	Title    string
	Advice   string
}

// Tables bundles every static table consumed by the engine.
type Tables struct {
	// Legitimate is ordered: candidate ties break on earliest position.
	Legitimate      []string
	Malicious       map[string]MaliciousEntry
	Vulns           map[string][]VulnRecord
	CredentialRules []PatternRule
	PermissionRules []PatternRule
	TrustedScopes   []string
	AuthSignalKeys  []string
}

// DefaultTables returns the bundled data snapshot.
func DefaultTables() Tables {
	return Tables{
		Legitimate:      knownLegitimate,
		Malicious:       knownMalicious,
		Vulns:           knownVulns,
		CredentialRules: credentialRules,
		PermissionRules: permissionRules,
		TrustedScopes:   trustedScopes,
		AuthSignalKeys:  authSignalKeys,
	}
}

var knownLegitimate = []string{
	"@modelcontextprotocol/server-filesystem",
	"@modelcontextprotocol/server-github",
	"@modelcontextprotocol/server-gitlab",
	"@modelcontextprotocol/server-google-maps",
	"@modelcontextprotocol/server-memory",
	"@modelcontextprotocol/server-postgres",
	"@modelcontextprotocol/server-puppeteer",
	"@modelcontextprotocol/server-sequential-thinking",
	"@modelcontextprotocol/server-slack",
	"@modelcontextprotocol/server-everything",
	"@modelcontextprotocol/server-brave-search",
	"mcp-server-github",
	"mcp-server-gitlab",
	"mcp-server-fetch",
	"mcp-server-git",
	"mcp-server-time",
	"mcp-server-sqlite",
	"mcp-server-sentry",
	"mcp-server-docker",
	"mcp-server-kubernetes",
	"server-filesystem",
	"server-postgres",
	"firecrawl-mcp",
	"tavily-mcp",
	"exa-mcp-server",
	"@notionhq/notion-mcp-server",
	"@playwright/mcp",
	"@supabase/mcp-server-supabase",
	"@cloudflare/mcp-server-cloudflare",
	"@stripe/mcp",
	"@sentry/mcp-server",
	"@browserbasehq/mcp",
	"@elastic/mcp-server-elasticsearch",
	"awslabs.aws-documentation-mcp-server",
	"mcp-atlassian",
	"mcp-obsidian",
}

var knownMalicious = map[string]MaliciousEntry{
	"mcp-servr-github": {
		Impersonates: "mcp-server-github",
		Reason:       "reported typosquat exfiltrating GitHub tokens via postinstall",
		Severity:     SeverityCritical,
	},
	"mcp-server-githb": {
		Impersonates: "mcp-server-github",
		Reason:       "reported typosquat of the GitHub server",
		Severity:     SeverityCritical,
	},
	"@modelcontextprotocoI/server-github": {
		Impersonates: "@modelcontextprotocol/server-github",
		Reason:       "confusable scope (capital I for l) publishing trojaned builds",
		Severity:     SeverityCritical,
	},
	"mcp-server-postgress": {
		Impersonates: "@modelcontextprotocol/server-postgres",
		Reason:       "reported credential harvester impersonating the postgres server",
		Severity:     SeverityCritical,
	},
	"firecraw1-mcp": {
		Impersonates: "firecrawl-mcp",
		Reason:       "confusable typosquat (digit 1 for l) with install-time beaconing",
		Severity:     SeverityCritical,
	},
}

var knownVulns = map[string][]VulnRecord{
	"mcp-server-fetch": {
		{
			ID:       "MCPV-2025-0003",
			Title:    "SSRF via unrestricted fetch targets",
			Affected: "<0.6.3",
			Fixed:    "0.6.3",
			Severity: SeverityHigh,
			Advice:   "Upgrade to mcp-server-fetch 0.6.3 or later and restrict outbound targets.",
		},
	},
	"@modelcontextprotocol/server-puppeteer": {
		{
			ID:       "MCPV-2025-0007",
			Title:    "Arbitrary file read through file:// navigation",
			Affected: "<=2025.1.14",
			Fixed:    "2025.2.1",
			Severity: SeverityHigh,
			Advice:   "Upgrade and deny file:// navigation in launch options.",
		},
	},
	"mcp-server-sqlite": {
		{
			ID:       "MCPV-2025-0011",
			Title:    "SQL statement allow-list bypass",
			Affected: ">=0.3.0 <0.5.2",
			Fixed:    "0.5.2",
			Severity: SeverityMedium,
			Advice:   "Upgrade to 0.5.2; earlier allow-list filtering is bypassable with comments.",
		},
		{
			ID:       "MCPV-2024-0042",
			Title:    "Path traversal in database path handling",
			Affected: "<0.3.0",
			Fixed:    "0.3.0",
			Severity: SeverityMedium,
			Advice:   "Upgrade past 0.3.0 or pin the database path outside user control.",
		},
	},
	"mcp-remote": {
		{
			ID:       "CVE-2025-6514",
			Title:    "OS command injection from malicious server URL",
			Affected: "<0.1.16",
			Fixed:    "0.1.16",
			Severity: SeverityCritical,
			Advice:   "Upgrade mcp-remote to 0.1.16 or later; earlier versions execute attacker-controlled commands.",
		},
	},
}

var credentialRules = []PatternRule{
	{
		Pattern:  `AKIA[0-9A-Z]{16}`,
		Type:     TypeCredential,
		Severity: SeverityCritical,
		Title:    "AWS access key ID in configuration",
		Advice:   "Remove the key, rotate it in IAM, and pass credentials via the environment.",
	},
	{
		Pattern:  `-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`,
		Type:     TypeCredential,
		Severity: SeverityCritical,
		Title:    "Private key material in configuration",
		Advice:   "Remove the key from the config and load it from a protected file instead.",
	},
	{
		Pattern:  `gh[pousr]_[A-Za-z0-9]{36,}`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "GitHub token in configuration",
		Advice:   "Revoke the token and reference it as an environment variable.",
	},
	{
		Pattern:  `sk-[A-Za-z0-9_-]{20,}`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "API secret key in configuration",
		Advice:   "Rotate the key and reference it as an environment variable.",
	},
	{
		Pattern:  `xox[baprs]-[A-Za-z0-9-]{10,}`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "Slack token in configuration",
		Advice:   "Revoke the token in the Slack admin console and rotate it.",
	},
	{
		Pattern:  `glpat-[A-Za-z0-9_-]{20,}`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "GitLab personal access token in configuration",
		Advice:   "Revoke the token and reference it as an environment variable.",
	},
	{
		Pattern:  `eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "JWT embedded in configuration",
		Advice:   "Remove the token; JWTs in config files outlive their intended sessions.",
	},
	{
		Pattern:  `(?i)postgres(?:ql)?://[^:/\s]+:[^@\s]+@`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "Database connection string with inline password",
		Advice:   "Move the password into an environment variable reference.",
	},
}

var permissionRules = []PatternRule{
	{
		Pattern:  `--dangerously-skip-permissions|--skip-permissions`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "Permission prompts disabled",
		Advice:   "Remove the flag; unattended approval defeats the tool permission model.",
	},
	{
		Pattern:  `--allow-all|--yolo|--trust-all(?:-tools)?`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "Blanket tool trust enabled",
		Advice:   "Grant individual capabilities instead of a blanket allow.",
	},
	{
		Pattern:  `--no-sandbox|--disable-sandbox`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "Sandbox disabled",
		Advice:   "Run the server sandboxed; remove the flag.",
	},
	{
		Pattern:  `--privileged`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "Privileged container requested",
		Advice:   "Drop --privileged and grant only the capabilities the server needs.",
	},
	{
		Pattern:  `^/$|/:/`,
		Type:     TypePermission,
		Severity: SeverityMedium,
		Title:    "Filesystem root exposed",
		Advice:   "Scope the server to the specific directories it needs.",
	},
	{
		Pattern:  `(?i)(?:^|[/\\])\.ssh(?:$|[/\\])`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "SSH key directory exposed",
		Advice:   "Never grant tool servers access to ~/.ssh.",
	},
	{
		Pattern:  `(?i)(?:^|[/\\])\.aws(?:$|[/\\])`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "AWS credential directory exposed",
		Advice:   "Never grant tool servers access to ~/.aws.",
	},
	{
		Pattern:  `(?i)/etc/(?:passwd|shadow|sudoers)`,
		Type:     TypePermission,
		Severity: SeverityHigh,
		Title:    "Sensitive system file referenced",
		Advice:   "Remove system account files from the server's argument list.",
	},
}

var trustedScopes = []string{
	"@modelcontextprotocol/",
	"@anthropic-ai/",
	"@cloudflare/",
	"@notionhq/",
	"@playwright/",
	"@supabase/",
	"@stripe/",
	"@sentry/",
	"@elastic/",
	"@browserbasehq/",
	"awslabs.",
}

// authSignalKeys are environment keys whose presence counts as an auth signal
// for SSE-style transports.
var authSignalKeys = []string{
	"AUTHORIZATION",
	"AUTH_TOKEN",
	"AUTH_HEADER",
	"API_KEY",
	"ACCESS_TOKEN",
	"BEARER_TOKEN",
	"TOKEN",
	"OAUTH_TOKEN",
	"CLIENT_SECRET",
}
