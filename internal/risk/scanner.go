package risk

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// EnrichmentSignal is one registry-derived observation about a package.
type EnrichmentSignal struct {
	Severity Severity
	Title    string
	Detail   string
	Advice   string
}

// EnrichmentResult is the outcome of one registry lookup. Degraded results
// carry the reason and no signals; the scan proceeds without them.
type EnrichmentResult struct {
	Package  string
	Found    bool
	Degraded bool
	Reason   string
	Signals  []EnrichmentSignal
}

// EnrichmentProvider answers registry lookups for package identities. A
// provider must honor context cancellation; the scanner bounds every lookup
// with a deadline.
type EnrichmentProvider interface {
	Lookup(ctx context.Context, pkg string) EnrichmentResult
}

// Scanner runs the full evaluation pipeline over a set of server specs.
// Local checks run first and synchronously; registry enrichment fans out
// afterward, one bounded lookup per distinct package identity.
type Scanner struct {
	engine   *Engine
	provider EnrichmentProvider
	timeout  time.Duration
}

// NewScanner builds a scanner. A nil provider disables enrichment entirely.
func NewScanner(engine *Engine, provider EnrichmentProvider, timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scanner{engine: engine, provider: provider, timeout: timeout}
}

// Scan evaluates every server and returns the aggregated result. The local
// phase alone fully determines pass/warn/fail ordering semantics; the
// enrichment phase can only add findings, never reorder or remove them
// within a server.
func (s *Scanner) Scan(ctx context.Context, servers []ServerSpec) Result {
	agg := NewAggregator(len(servers))
	identities := make(map[string][]string) // package -> server names

	for _, srv := range servers {
		agg.AddServer(srv.Name)
		identity, pinned := ExtractIdentity(srv.Command, srv.Args)
		agg.Add(srv.Name, s.localFindings(srv, identity, pinned)...)
		if identity != "" {
			identities[identity] = append(identities[identity], srv.Name)
		}
	}

	if s.provider != nil && len(identities) > 0 {
		s.enrich(ctx, agg, identities)
	}
	return agg.Result()
}

// localFindings runs every static check for one server.
func (s *Scanner) localFindings(srv ServerSpec, identity string, pinned bool) []Finding {
	var out []Finding

	if identity != "" {
		if c := s.engine.EvaluateName(identity); c != nil {
			out = append(out, typosquatFinding(identity, c))
		}
		out = append(out, s.engine.VulnFindings(identity)...)
		out = append(out, s.engine.CheckTrust(identity)...)
	}

	// Rule families run in a fixed order: all credential checks first,
	// then permissions, then transport. Args precede env within each.
	for i, a := range srv.Args {
		out = append(out, s.engine.MatchCredentials(a, fmt.Sprintf("argument %d", i))...)
	}
	for _, k := range sortedKeys(srv.Env) {
		out = append(out, s.engine.MatchCredentials(srv.Env[k], "env "+k)...)
		out = append(out, s.engine.MatchInlinedSecret(k, srv.Env[k])...)
	}
	for i, a := range srv.Args {
		out = append(out, s.engine.MatchPermissions(a, fmt.Sprintf("argument %d", i))...)
	}
	for _, k := range sortedKeys(srv.Env) {
		out = append(out, s.engine.MatchPermissions(srv.Env[k], "env "+k)...)
	}

	out = append(out, s.engine.MatchTransport(srv)...)
	out = append(out, s.engine.StructuralCheck(srv, identity, pinned)...)
	return out
}

func typosquatFinding(pkg string, c *Candidate) Finding {
	detail := fmt.Sprintf("%s resembles %s (distance %d, %s)", pkg, c.Target, c.Distance, c.Method)
	if c.Confidence == ConfidenceConfirmed {
		detail = fmt.Sprintf("%s is a known malicious impersonation of %s: %s", pkg, c.Target, c.Reason)
	}
	return Finding{
		Package:  pkg,
		Type:     TypeTyposquat,
		Severity: c.Severity,
		Title:    fmt.Sprintf("Possible typosquat of %s", c.Target),
		Detail:   detail,
		Advice:   fmt.Sprintf("If you meant %s, correct the package name; otherwise verify the publisher.", c.Target),
		Extra: map[string]string{
			"target":     c.Target,
			"distance":   strconv.Itoa(c.Distance),
			"confidence": string(c.Confidence),
			"method":     c.Method,
		},
	}
}

// enrich fans out one registry lookup per distinct identity, each under its
// own deadline, then attaches the outcome to every server using the package.
// Results are applied in sorted package order so output stays deterministic
// regardless of completion order.
func (s *Scanner) enrich(ctx context.Context, agg *Aggregator, identities map[string][]string) {
	pkgs := make([]string, 0, len(identities))
	for pkg := range identities {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	// Every lookup runs concurrently under its own deadline, so the whole
	// phase is bounded by one timeout no matter how many identities there are.
	results := make([]EnrichmentResult, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()
			results[i] = s.provider.Lookup(lctx, pkg)
			return nil
		})
	}
	// Lookups never return errors, so Wait only synchronizes.
	_ = g.Wait()

	for i, pkg := range pkgs {
		res := results[i]
		for _, server := range identities[pkg] {
			agg.Add(server, enrichmentFindings(pkg, res)...)
		}
	}
}

// enrichmentFindings converts one lookup outcome into findings. A degraded
// lookup yields exactly one info finding; per-server deduplication keeps it
// single even when several lookups degrade for the same server.
func enrichmentFindings(pkg string, res EnrichmentResult) []Finding {
	if res.Degraded {
		return []Finding{{
			Package:  pkg,
			Type:     TypeEnrichmentUnavailable,
			Severity: SeverityInfo,
			Title:    "Registry enrichment unavailable",
			Detail:   "registry lookups did not complete; results reflect local checks only",
			Advice:   "Re-run with registry access, or pass --no-enrich to silence this notice.",
		}}
	}
	var out []Finding
	if !res.Found {
		out = append(out, Finding{
			Package:  pkg,
			Type:     TypeRegistryMissing,
			Severity: SeverityHigh,
			Title:    "Package not found in registry",
			Detail:   fmt.Sprintf("%s does not exist in the public registry", pkg),
			Advice:   "A missing package may indicate a private mirror dependency or a removed malicious package.",
		})
	}
	for _, sig := range res.Signals {
		out = append(out, Finding{
			Package:  pkg,
			Type:     TypeRegistrySignal,
			Severity: sig.Severity,
			Title:    sig.Title,
			Detail:   sig.Detail,
			Advice:   sig.Advice,
		})
	}
	return out
}
