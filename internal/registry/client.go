// Package registry enriches scan results with metadata from the public npm
// registry: existence, install scripts, package age and deprecation.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcpvet/mcpvet/internal/risk"
)

// youngPackageAge is the threshold below which a package counts as newly
// published.
const youngPackageAge = 30 * 24 * time.Hour

// Client looks up package metadata over HTTP. Lookups are single-shot; a
// failed or timed-out request degrades, it is never retried.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// New builds a client against the given registry base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// packument is the slice of the registry document the signals need.
type packument struct {
	Name     string `json:"name"`
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Time     map[string]string         `json:"time"`
	Versions map[string]packageVersion `json:"versions"`
}

type packageVersion struct {
	Scripts    map[string]string `json:"scripts"`
	Deprecated string            `json:"deprecated"`
}

// Lookup fetches the package document and derives enrichment signals.
// Any transport or decode failure yields a degraded result.
func (c *Client) Lookup(ctx context.Context, pkg string) risk.EnrichmentResult {
	res := risk.EnrichmentResult{Package: pkg}

	// Scoped names keep the @ but escape the scope separator.
	escaped := strings.ReplaceAll(url.PathEscape(pkg), "%40", "@")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+escaped, nil)
	if err != nil {
		res.Degraded = true
		res.Reason = err.Error()
		return res
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		res.Degraded = true
		res.Reason = err.Error()
		return res
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return res // Found stays false
	case resp.StatusCode != http.StatusOK:
		res.Degraded = true
		res.Reason = fmt.Sprintf("registry returned %d", resp.StatusCode)
		return res
	}

	var doc packument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		res.Degraded = true
		res.Reason = fmt.Sprintf("decode packument: %v", err)
		return res
	}

	res.Found = true
	res.Signals = c.signals(pkg, doc)
	return res
}

func (c *Client) signals(pkg string, doc packument) []risk.EnrichmentSignal {
	var out []risk.EnrichmentSignal

	latest := doc.Versions[doc.DistTags.Latest]
	for _, hook := range []string{"preinstall", "install", "postinstall"} {
		if _, ok := latest.Scripts[hook]; ok {
			out = append(out, risk.EnrichmentSignal{
				Severity: risk.SeverityHigh,
				Title:    "Package runs install scripts",
				Detail:   fmt.Sprintf("%s declares a %s script that executes on install", pkg, hook),
				Advice:   "Review the script before install, or install with scripts disabled.",
			})
			break
		}
	}

	if created, ok := doc.Time["created"]; ok {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			if age := c.now().Sub(ts); age < youngPackageAge {
				out = append(out, risk.EnrichmentSignal{
					Severity: risk.SeverityMedium,
					Title:    "Recently published package",
					Detail:   fmt.Sprintf("%s was first published %d days ago", pkg, int(age.Hours()/24)),
					Advice:   "New packages are a common typosquat vehicle; verify before adopting.",
				})
			}
		}
	}

	if latest.Deprecated != "" {
		out = append(out, risk.EnrichmentSignal{
			Severity: risk.SeverityMedium,
			Title:    "Package is deprecated",
			Detail:   fmt.Sprintf("%s@%s is deprecated: %s", pkg, doc.DistTags.Latest, latest.Deprecated),
			Advice:   "Migrate to the maintained replacement named in the deprecation notice.",
		})
	}
	return out
}
