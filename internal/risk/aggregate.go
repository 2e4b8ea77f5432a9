package risk

import (
	"fmt"
	"sort"
)

// Aggregator collects findings per server, deduplicates them, and produces
// the final ordered result. Add order within a server is preserved; servers
// are emitted in sorted name order so repeated scans of the same input are
// byte-identical.
type Aggregator struct {
	servers  []string
	byServer map[string][]Finding
	seen     map[string]map[[2]string]struct{}
	total    int
}

// NewAggregator returns an empty aggregator sized for n servers.
func NewAggregator(n int) *Aggregator {
	return &Aggregator{
		byServer: make(map[string][]Finding, n),
		seen:     make(map[string]map[[2]string]struct{}, n),
	}
}

// AddServer registers a scanned server so it counts toward totals even when
// it produces no findings.
func (a *Aggregator) AddServer(name string) {
	if _, ok := a.byServer[name]; ok {
		return
	}
	a.servers = append(a.servers, name)
	a.byServer[name] = nil
	a.seen[name] = make(map[[2]string]struct{})
}

// Add records findings for a server. A finding whose (title, detail) pair
// was already recorded for that server is dropped; the first occurrence
// wins. Findings with a severity outside the enum are a programming error
// and panic.
func (a *Aggregator) Add(server string, findings ...Finding) {
	a.AddServer(server)
	for _, f := range findings {
		if !f.Severity.Valid() {
			panic(fmt.Sprintf("risk: finding %q has invalid severity %q", f.Title, f.Severity))
		}
		key := [2]string{f.Title, f.Detail}
		if _, dup := a.seen[server][key]; dup {
			continue
		}
		a.seen[server][key] = struct{}{}
		f.Server = server
		a.byServer[server] = append(a.byServer[server], f)
	}
}

// Result finalizes the aggregation: findings concatenated across servers in
// sorted name order, the severity histogram, and the derived counters.
func (a *Aggregator) Result() Result {
	names := make([]string, len(a.servers))
	copy(names, a.servers)
	sort.Strings(names)

	res := Result{
		TotalServers: len(names),
		Findings:     []Finding{},
		BySeverity:   make(map[Severity]int, len(Severities)),
	}
	for _, s := range Severities {
		res.BySeverity[s] = 0
	}
	for _, name := range names {
		for _, f := range a.byServer[name] {
			res.Findings = append(res.Findings, f)
			res.BySeverity[f.Severity]++
			switch f.Type {
			case TypeTyposquat:
				res.TyposquatCount++
			case TypeUnverifiedPublisher:
				res.UnverifiedPublisherCount++
			}
		}
	}
	return res
}
