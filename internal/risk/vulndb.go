package risk

import "fmt"

// VulnFindings returns one finding per advisory recorded for the exact
// package name. Lookup is exact; no fuzzy matching against the advisory
// table.
func (e *Engine) VulnFindings(pkg string) []Finding {
	records := e.tables.Vulns[pkg]
	out := make([]Finding, 0, len(records))
	for _, rec := range records {
		out = append(out, Finding{
			Package:  pkg,
			Type:     TypeVulnerability,
			Severity: rec.Severity,
			Title:    fmt.Sprintf("%s: %s", rec.ID, rec.Title),
			Detail:   fmt.Sprintf("%s affects versions %s (fixed in %s)", rec.ID, rec.Affected, rec.Fixed),
			Advice:   rec.Advice,
			Extra: map[string]string{
				"advisory": rec.ID,
				"affected": rec.Affected,
				"fixed":    rec.Fixed,
			},
		})
	}
	return out
}
