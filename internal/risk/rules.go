package risk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// sensitiveKeyPattern flags environment keys that usually carry secrets.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(key|token|secret|passw(or)?d|credential|auth|bearer)`)

// httpURLPattern extracts plain-HTTP endpoints from scalar values.
var httpURLPattern = regexp.MustCompile(`http://[^\s"']+`)

// maskSeparators terminate the retained prefix when masking a secret.
const maskSeparators = " \t=:'\""

// MaskSecret redacts a matched secret: the first three contiguous
// non-separator characters are retained, everything else becomes ****.
// The full secret never appears in a finding.
func MaskSecret(match string) string {
	keep := 0
	for keep < len(match) && keep < 3 {
		if strings.ContainsRune(maskSeparators, rune(match[keep])) {
			break
		}
		keep++
	}
	return match[:keep] + "****"
}

// MatchCredentials runs the credential rule table against one scalar value.
// Matched substrings are reported masked.
func (e *Engine) MatchCredentials(value, location string) []Finding {
	var out []Finding
	for _, r := range e.credRules {
		m := r.re.FindString(value)
		if m == "" {
			continue
		}
		out = append(out, Finding{
			Type:     r.Type,
			Severity: r.Severity,
			Title:    r.Title,
			Detail:   fmt.Sprintf("%s contains %s", location, MaskSecret(m)),
			Advice:   r.Advice,
		})
	}
	return out
}

// MatchPermissions runs the permission rule table against one scalar value.
// These are flags and paths, not secrets, so the match is reported as is.
func (e *Engine) MatchPermissions(value, location string) []Finding {
	var out []Finding
	for _, r := range e.permRules {
		m := r.re.FindString(value)
		if m == "" {
			continue
		}
		out = append(out, Finding{
			Type:     r.Type,
			Severity: r.Severity,
			Title:    r.Title,
			Detail:   fmt.Sprintf("%s matches %q", location, m),
			Advice:   r.Advice,
		})
	}
	return out
}

// MatchInlinedSecret applies the likely-inlined-secret heuristic to one
// environment entry. It is independent of the credential pattern rules and
// may co-fire with them.
func (e *Engine) MatchInlinedSecret(key, value string) []Finding {
	if !sensitiveKeyPattern.MatchString(key) {
		return nil
	}
	if strings.HasPrefix(value, "$") {
		return nil // environment variable reference, not a literal
	}
	if len(value) <= e.opts.SecretMinLength {
		return nil
	}
	return []Finding{{
		Type:     TypeInlinedSecret,
		Severity: SeverityHigh,
		Title:    "Likely inlined secret in environment",
		Detail:   fmt.Sprintf("env %s holds a literal value (%s) instead of a variable reference", key, MaskSecret(value)),
		Advice:   "Replace the literal with a $VAR reference resolved at launch time.",
	}}
}

// MatchTransport evaluates transport-level rules for a server: plain-HTTP
// endpoints (loopback excluded) and SSE transports configured without any
// auth-signal environment key.
func (e *Engine) MatchTransport(s ServerSpec) []Finding {
	var out []Finding

	scalars := make([]string, 0, 1+len(s.Args)+len(s.Env))
	if s.URL != "" {
		scalars = append(scalars, s.URL)
	}
	scalars = append(scalars, s.Args...)
	for _, k := range sortedKeys(s.Env) {
		scalars = append(scalars, s.Env[k])
	}
	for _, v := range scalars {
		for _, u := range httpURLPattern.FindAllString(v, -1) {
			if isLoopbackURL(u) {
				continue
			}
			out = append(out, Finding{
				Type:     TypeInsecureTransport,
				Severity: SeverityMedium,
				Title:    "Unencrypted HTTP endpoint",
				Detail:   fmt.Sprintf("endpoint %s is plain HTTP", u),
				Advice:   "Use HTTPS for non-local endpoints.",
			})
		}
	}

	if isSSE(s) && !e.hasAuthSignal(s.Env) {
		out = append(out, Finding{
			Type:     TypeUnauthTransport,
			Severity: SeverityHigh,
			Title:    "SSE transport without authentication",
			Detail:   fmt.Sprintf("server %s uses SSE transport with no auth-signal environment key", s.Name),
			Advice:   "Configure an authentication header or token for the SSE endpoint.",
		})
	}
	return out
}

func isSSE(s ServerSpec) bool {
	t := strings.ToLower(s.Transport)
	if t == "sse" {
		return true
	}
	if s.URL != "" && strings.Contains(strings.ToLower(s.URL), "/sse") {
		return true
	}
	return false
}

func (e *Engine) hasAuthSignal(env map[string]string) bool {
	for k := range env {
		if _, ok := e.authKeys[strings.ToUpper(k)]; ok {
			return true
		}
	}
	return false
}

// isLoopbackURL reports whether a plain-HTTP URL points at a loopback or
// any-interface address, which is outside the insecure-transport rule.
func isLoopbackURL(u string) bool {
	rest := strings.TrimPrefix(u, "http://")
	host := rest
	for _, sep := range []string{"/", ":", "?"} {
		if i := strings.Index(host, sep); i >= 0 {
			host = host[:i]
		}
	}
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "0.0.0.0", "[::1]", "::1":
		return true
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
