package risk

import (
	"fmt"
	"strings"
)

// structuralRule is one configuration-shape heuristic: a skip predicate that
// exempts the server, a match predicate, and a fixed classification. Rules
// are data; StructuralCheck interprets them.
type structuralRule struct {
	Type     string
	Severity Severity
	Title    string
	Advice   string
	skip     func(e *Engine, s ServerSpec, identity string, pinned bool) bool
	match    func(e *Engine, s ServerSpec, identity string, pinned bool) bool
	detail   func(s ServerSpec, identity string) string
	usesPkg  bool
}

var structuralRules = []structuralRule{
	{
		Type:     TypeMissingAuth,
		Severity: SeverityLow,
		Title:    "Service integration without credentials",
		Advice:   "Confirm the server receives its credentials from a secure channel.",
		// Remote servers authenticate at the endpoint, not in the config.
		skip: func(_ *Engine, s ServerSpec, _ string, _ bool) bool {
			return s.URL != ""
		},
		match: func(e *Engine, s ServerSpec, _ string, _ bool) bool {
			return e.serviceFlavored(s) && len(s.Env) == 0
		},
		detail: func(s ServerSpec, _ string) string {
			return fmt.Sprintf("server %s looks like a service integration but declares no environment", s.Name)
		},
	},
	{
		Type:     TypeUnpinnedVersion,
		Severity: SeverityLow,
		Title:    "Package version not pinned",
		Advice:   "Pin an exact version (pkg@x.y.z) so installs are reproducible.",
		skip: func(_ *Engine, _ ServerSpec, identity string, _ bool) bool {
			return identity == ""
		},
		match: func(_ *Engine, _ ServerSpec, _ string, pinned bool) bool {
			return !pinned
		},
		detail: func(_ ServerSpec, identity string) string {
			return fmt.Sprintf("%s is launched without a version pin", identity)
		},
		usesPkg: true,
	},
}

// StructuralCheck runs the structural rule table against one server, in
// table order.
func (e *Engine) StructuralCheck(s ServerSpec, identity string, pinned bool) []Finding {
	var out []Finding
	for _, r := range structuralRules {
		if r.skip(e, s, identity, pinned) || !r.match(e, s, identity, pinned) {
			continue
		}
		f := Finding{
			Type:     r.Type,
			Severity: r.Severity,
			Title:    r.Title,
			Detail:   r.detail(s, identity),
			Advice:   r.Advice,
		}
		if r.usesPkg {
			f.Package = identity
		}
		out = append(out, f)
	}
	return out
}

// serviceFlavored reports whether the server name or package identity
// mentions a known external service.
func (e *Engine) serviceFlavored(s ServerSpec) bool {
	haystack := strings.ToLower(s.Name + " " + s.Command + " " + strings.Join(s.Args, " "))
	for _, kw := range e.opts.AuthKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
