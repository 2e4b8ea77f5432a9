package risk

import "testing"

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"mcp-servr-github", "mcp-server-github", 1},
		{"flaw", "lawn", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
		// Symmetry holds for unit costs.
		if got := levenshtein(c.b, c.a); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.b, c.a, got, c.want)
		}
	}
}

func TestLevenshteinTriangleInequality(t *testing.T) {
	names := []string{"mcp-server-github", "mcp-servr-github", "server-postgres", "abc", ""}
	for _, a := range names {
		for _, b := range names {
			for _, c := range names {
				ab := levenshtein(a, b)
				bc := levenshtein(b, c)
				ac := levenshtein(a, c)
				if ac > ab+bc {
					t.Errorf("triangle inequality violated: d(%q,%q)=%d > d(%q,%q)=%d + d(%q,%q)=%d",
						a, c, ac, a, b, ab, b, c, bc)
				}
			}
		}
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultTables(), DefaultOptions())
}

func TestEvaluateNameKnownLegitimate(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"mcp-server-github", "@modelcontextprotocol/server-filesystem", "firecrawl-mcp"} {
		if c := e.EvaluateName(name); c != nil {
			t.Errorf("EvaluateName(%q) = %+v, want nil", name, c)
		}
	}
}

func TestEvaluateNameKnownMalicious(t *testing.T) {
	e := newTestEngine(t)
	c := e.EvaluateName("mcp-servr-github")
	if c == nil {
		t.Fatal("EvaluateName returned nil for a known malicious name")
	}
	if c.Confidence != ConfidenceConfirmed {
		t.Errorf("confidence = %s, want confirmed", c.Confidence)
	}
	if c.Method != MethodExactMalicious {
		t.Errorf("method = %s, want %s", c.Method, MethodExactMalicious)
	}
	if c.Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", c.Severity)
	}
	if c.Target != "mcp-server-github" {
		t.Errorf("target = %s, want mcp-server-github", c.Target)
	}
	if c.Distance != 1 {
		t.Errorf("distance = %d, want 1", c.Distance)
	}
}

func TestEvaluateNameHeuristics(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		name       string
		target     string
		distance   int
		confidence Confidence
		method     string
		severity   Severity
	}{
		{"mcp-server-githun", "mcp-server-github", 1, ConfidenceHigh, MethodSingleChar, SeverityCritical},
		{"mcp-server-git1ab", "mcp-server-gitlab", 1, ConfidenceHigh, MethodConfusable, SeverityCritical},
		{"mcp-server-tiem", "mcp-server-time", 2, ConfidenceMedium, MethodTransposition, SeverityHigh},
	}
	for _, tc := range cases {
		c := e.EvaluateName(tc.name)
		if c == nil {
			t.Errorf("EvaluateName(%q) = nil, want candidate", tc.name)
			continue
		}
		if c.Target != tc.target {
			t.Errorf("%q: target = %s, want %s", tc.name, c.Target, tc.target)
		}
		if c.Distance != tc.distance {
			t.Errorf("%q: distance = %d, want %d", tc.name, c.Distance, tc.distance)
		}
		if c.Confidence != tc.confidence {
			t.Errorf("%q: confidence = %s, want %s", tc.name, c.Confidence, tc.confidence)
		}
		if c.Method != tc.method {
			t.Errorf("%q: method = %s, want %s", tc.name, c.Method, tc.method)
		}
		if c.Severity != tc.severity {
			t.Errorf("%q: severity = %s, want %s", tc.name, c.Severity, tc.severity)
		}
	}
}

func TestEvaluateNameNoCandidate(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"totally-unrelated-package", "x", "left-pad"} {
		if c := e.EvaluateName(name); c != nil {
			t.Errorf("EvaluateName(%q) = %+v, want nil", name, c)
		}
	}
}

func TestEvaluateNameTieBreak(t *testing.T) {
	tables := Tables{Legitimate: []string{"aaaaa", "aaaab"}}
	e := NewEngine(tables, DefaultOptions())
	c := e.EvaluateName("aaaac")
	if c == nil {
		t.Fatal("EvaluateName returned nil")
	}
	// Both targets are at distance 1; the earlier table entry wins.
	if c.Target != "aaaaa" {
		t.Errorf("target = %s, want aaaaa", c.Target)
	}
}
