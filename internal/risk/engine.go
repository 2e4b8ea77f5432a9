package risk

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"
)

// Options are the tunable heuristics of the pipeline. The similarity
// thresholds and confusable table are configuration, not algorithm constants.
type Options struct {
	// MaxEditDistance is the largest admissible Levenshtein distance for a
	// typosquat candidate.
	MaxEditDistance int
	// MinSimilarity is the exclusive lower bound on normalized similarity
	// (1 - distance/maxLen) for a candidate to be admissible.
	MinSimilarity float64
	// Confusables holds character or digraph pairs commonly mistaken for
	// each other, e.g. {"rn", "m"}.
	Confusables [][2]string
	// AuthKeywords drive the missing-authentication structural heuristic.
	AuthKeywords []string
	// SecretMinLength is the minimum value length for the inlined-secret
	// environment rule.
	SecretMinLength int
	// Allowlist holds glob patterns for packages trusted by local policy.
	Allowlist []string
}

// DefaultOptions returns the shipped heuristic settings.
func DefaultOptions() Options {
	return Options{
		MaxEditDistance: 3,
		MinSimilarity:   0.75,
		Confusables: [][2]string{
			{"l", "1"},
			{"i", "1"},
			{"rn", "m"},
			{"0", "o"},
			{"vv", "w"},
			{"cl", "d"},
			{"5", "s"},
		},
		AuthKeywords: []string{
			"github", "gitlab", "slack", "postgres", "mysql", "database",
			"aws", "stripe", "jira", "notion", "sentry", "supabase", "linear",
		},
		SecretMinLength: 8,
	}
}

type compiledRule struct {
	PatternRule
	re *regexp.Regexp
}

// Engine evaluates server specs against the static tables. It is immutable
// after construction and safe for concurrent use across servers.
type Engine struct {
	tables    Tables
	opts      Options
	credRules []compiledRule
	permRules []compiledRule
	allow     []glob.Glob
	legitSet  map[string]struct{}
	authKeys  map[string]struct{}
}

// NewEngine compiles the tables and options into an engine. Corrupt static
// data (bad patterns, out-of-enum severities) is a programming error and
// panics; use Tables.Validate for a recoverable check.
func NewEngine(tables Tables, opts Options) *Engine {
	if err := tables.Validate(); err != nil {
		panic(fmt.Sprintf("risk: corrupt static tables: %v", err))
	}
	e := &Engine{
		tables:   tables,
		opts:     opts,
		legitSet: make(map[string]struct{}, len(tables.Legitimate)),
		authKeys: make(map[string]struct{}, len(tables.AuthSignalKeys)),
	}
	for _, name := range tables.Legitimate {
		e.legitSet[name] = struct{}{}
	}
	for _, k := range tables.AuthSignalKeys {
		e.authKeys[k] = struct{}{}
	}
	for _, r := range tables.CredentialRules {
		e.credRules = append(e.credRules, compiledRule{r, regexp.MustCompile(r.Pattern)})
	}
	for _, r := range tables.PermissionRules {
		e.permRules = append(e.permRules, compiledRule{r, regexp.MustCompile(r.Pattern)})
	}
	for _, p := range opts.Allowlist {
		e.allow = append(e.allow, glob.MustCompile(p))
	}
	return e
}

// Validate checks the static tables for internal consistency: compilable
// patterns, complete classifications, severities inside the enum.
func (t Tables) Validate() error {
	for name, entry := range t.Malicious {
		if entry.Impersonates == "" {
			return fmt.Errorf("malicious entry %q missing impersonated name", name)
		}
		if !entry.Severity.Valid() {
			return fmt.Errorf("malicious entry %q has invalid severity %q", name, entry.Severity)
		}
	}
	for pkg, records := range t.Vulns {
		for _, rec := range records {
			if rec.ID == "" || rec.Title == "" {
				return fmt.Errorf("vulnerability record for %q missing id or title", pkg)
			}
			if !rec.Severity.Valid() {
				return fmt.Errorf("vulnerability %s has invalid severity %q", rec.ID, rec.Severity)
			}
		}
	}
	for _, set := range [][]PatternRule{t.CredentialRules, t.PermissionRules} {
		for _, r := range set {
			if r.Pattern == "" || r.Type == "" || r.Title == "" {
				return fmt.Errorf("pattern rule %q missing required fields", r.Title)
			}
			if !r.Severity.Valid() {
				return fmt.Errorf("pattern rule %q has invalid severity %q", r.Title, r.Severity)
			}
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("pattern rule %q does not compile: %w", r.Title, err)
			}
		}
	}
	return nil
}

// Tables exposes the engine's static tables (read-only).
func (e *Engine) Tables() Tables {
	return e.tables
}

// Options exposes the engine's heuristic settings (read-only).
func (e *Engine) Options() Options {
	return e.opts
}
