package risk

import (
	"fmt"
	"strings"
)

// CheckTrust evaluates publisher trust for a package identity. Trusted
// packages (verbatim known-legitimate, trusted scope, or local allowlist)
// yield nil. Everything else yields a single medium unverified-publisher
// finding.
func (e *Engine) CheckTrust(pkg string) []Finding {
	if pkg == "" {
		return nil
	}
	if _, ok := e.legitSet[pkg]; ok {
		return nil
	}
	for _, scope := range e.tables.TrustedScopes {
		if strings.HasPrefix(pkg, scope) {
			return nil
		}
	}
	for _, g := range e.allow {
		if g.Match(pkg) {
			return nil
		}
	}
	return []Finding{{
		Package:  pkg,
		Type:     TypeUnverifiedPublisher,
		Severity: SeverityMedium,
		Title:    "Package from unverified publisher",
		Detail:   fmt.Sprintf("%s is not from a trusted scope or the known-server list", pkg),
		Advice:   "Verify the publisher before use, or add the package to the local allowlist.",
	}}
}
