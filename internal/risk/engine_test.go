package risk

import (
	"strings"
	"testing"
)

func TestTablesValidate(t *testing.T) {
	if err := DefaultTables().Validate(); err != nil {
		t.Fatalf("bundled tables must validate: %v", err)
	}

	bad := DefaultTables()
	bad.CredentialRules = append(bad.CredentialRules, PatternRule{
		Pattern:  `[unclosed`,
		Type:     TypeCredential,
		Severity: SeverityHigh,
		Title:    "broken",
	})
	if err := bad.Validate(); err == nil {
		t.Error("uncompilable pattern should fail validation")
	}

	bad = DefaultTables()
	bad.Malicious = map[string]MaliciousEntry{
		"evil-pkg": {Impersonates: "good-pkg", Severity: "catastrophic"},
	}
	if err := bad.Validate(); err == nil {
		t.Error("out-of-enum severity should fail validation")
	}
}

func TestNewEnginePanicsOnCorruptTables(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewEngine should panic on corrupt tables")
		}
	}()
	tables := DefaultTables()
	tables.Malicious = map[string]MaliciousEntry{"evil": {}}
	NewEngine(tables, DefaultOptions())
}

func TestCheckTrust(t *testing.T) {
	opts := DefaultOptions()
	opts.Allowlist = []string{"@acme/*"}
	e := NewEngine(DefaultTables(), opts)

	cases := []struct {
		pkg     string
		trusted bool
	}{
		{"@modelcontextprotocol/server-github", true},
		{"@anthropic-ai/anything", true},
		{"mcp-server-fetch", true},
		{"awslabs.aws-documentation-mcp-server", true},
		{"@acme/internal-mcp", true},
		{"random-mcp-thing", false},
		{"@unknown-scope/server", false},
		{"", true},
	}
	for _, c := range cases {
		findings := e.CheckTrust(c.pkg)
		if c.trusted && len(findings) != 0 {
			t.Errorf("CheckTrust(%q) = %d findings, want 0", c.pkg, len(findings))
		}
		if !c.trusted {
			if len(findings) != 1 {
				t.Errorf("CheckTrust(%q) = %d findings, want 1", c.pkg, len(findings))
				continue
			}
			if findings[0].Type != TypeUnverifiedPublisher || findings[0].Severity != SeverityMedium {
				t.Errorf("CheckTrust(%q) = %s/%s", c.pkg, findings[0].Type, findings[0].Severity)
			}
		}
	}
}

func TestVulnFindings(t *testing.T) {
	e := newTestEngine(t)

	if got := e.VulnFindings("mcp-server-sqlite"); len(got) != 2 {
		t.Errorf("mcp-server-sqlite: got %d findings, want 2", len(got))
	}
	if got := e.VulnFindings("no-such-package"); len(got) != 0 {
		t.Errorf("unknown package: got %d findings, want 0", len(got))
	}

	findings := e.VulnFindings("mcp-remote")
	if len(findings) != 1 {
		t.Fatalf("mcp-remote: got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", f.Severity)
	}
	if !strings.Contains(f.Title, "CVE-2025-6514") {
		t.Errorf("title missing advisory id: %s", f.Title)
	}
	if f.Extra["fixed"] != "0.1.16" {
		t.Errorf("fixed = %s, want 0.1.16", f.Extra["fixed"])
	}
}

func TestStructuralCheck(t *testing.T) {
	e := newTestEngine(t)

	t.Run("service without credentials", func(t *testing.T) {
		s := ServerSpec{Name: "github", Command: "npx", Args: []string{"-y", "some-github-mcp"}}
		findings := e.StructuralCheck(s, "some-github-mcp", true)
		if !hasType(findings, TypeMissingAuth) {
			t.Error("expected a missing-authentication finding")
		}
	})

	t.Run("service with env is fine", func(t *testing.T) {
		s := ServerSpec{
			Name:    "github",
			Command: "npx",
			Args:    []string{"-y", "some-github-mcp"},
			Env:     map[string]string{"GITHUB_TOKEN": "$GITHUB_TOKEN"},
		}
		if hasType(e.StructuralCheck(s, "some-github-mcp", true), TypeMissingAuth) {
			t.Error("env present, should not be flagged")
		}
	})

	t.Run("remote server skipped", func(t *testing.T) {
		s := ServerSpec{Name: "github", URL: "https://mcp.example.com/github"}
		if hasType(e.StructuralCheck(s, "", false), TypeMissingAuth) {
			t.Error("URL-based servers authenticate at the endpoint; should be skipped")
		}
	})

	t.Run("unpinned version", func(t *testing.T) {
		s := ServerSpec{Name: "fetch", Command: "npx", Args: []string{"mcp-server-fetch"}}
		findings := e.StructuralCheck(s, "mcp-server-fetch", false)
		if !hasType(findings, TypeUnpinnedVersion) {
			t.Error("expected an unpinned-version finding")
		}
		if hasType(e.StructuralCheck(s, "mcp-server-fetch", true), TypeUnpinnedVersion) {
			t.Error("pinned identity should not be flagged")
		}
		if hasType(e.StructuralCheck(ServerSpec{Name: "local", Command: "node"}, "", false), TypeUnpinnedVersion) {
			t.Error("no identity, no pin to check")
		}
	})
}

func hasType(findings []Finding, typ string) bool {
	for _, f := range findings {
		if f.Type == typ {
			return true
		}
	}
	return false
}
