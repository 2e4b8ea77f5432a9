package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mcpvet/mcpvet/internal/mcpconfig"
	"github.com/mcpvet/mcpvet/internal/registry"
	"github.com/mcpvet/mcpvet/internal/risk"
	"github.com/mcpvet/mcpvet/internal/support"
)

// runScan performs one scan pass and returns the process exit code.
func runScan(opts scanOptions) int {
	rep, code, err := executeScan(opts, "scan")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 3
	}
	if opts.JSON {
		printReportJSON(os.Stdout, rep)
	} else {
		printReportText(os.Stdout, rep)
	}
	return code
}

// executeScan loads configs, runs the pipeline, writes report.json and the
// audit line, and returns the report with its exit code. Config discovery or
// parse failures are fatal.
func executeScan(opts scanOptions, mode string) (*scanReport, int, error) {
	files := config.Paths.ConfigFiles
	if len(files) == 0 {
		files = mcpconfig.Discover(config.Paths.WorkspaceRoot)
	}

	servers, warnings, err := mcpconfig.LoadAll(files)
	if err != nil {
		return nil, 3, err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}

	scanner := risk.NewScanner(buildEngine(), buildProvider(opts),
		time.Duration(config.Enrichment.TimeoutSeconds)*time.Second)
	res := scanner.Scan(context.Background(), servers)
	verdict := risk.VerdictFor(res)
	rep := buildReport(res, verdict, files)

	outDir := config.Paths.OutputDir
	if err := support.WriteJSONAtomic(reportPath(outDir), rep); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot write report.json: %v\n", err)
	}
	if err := support.AppendAudit(outDir, support.AuditEntry{
		Mode:                 mode,
		ServersScanned:       res.TotalServers,
		TotalFindings:        len(res.Findings),
		CriticalCount:        res.BySeverity[risk.SeverityCritical],
		HighCount:            res.BySeverity[risk.SeverityHigh],
		Typosquats:           res.TyposquatCount,
		UnverifiedPublishers: res.UnverifiedPublisherCount,
		Verdict:              string(verdict),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot append audit log: %v\n", err)
	}

	return rep, verdict.ExitCode(), nil
}

// buildEngine assembles the risk engine from the bundled tables plus config
// overrides.
func buildEngine() *risk.Engine {
	tables := risk.DefaultTables()
	tables.TrustedScopes = append(tables.TrustedScopes, config.Scan.ExtraTrustedScopes...)

	opts := risk.DefaultOptions()
	opts.MaxEditDistance = config.Scan.MaxEditDistance
	opts.MinSimilarity = config.Scan.MinSimilarity
	if len(config.Scan.Confusables) > 0 {
		opts.Confusables = config.Scan.Confusables
	}
	if len(config.Scan.AuthKeywords) > 0 {
		opts.AuthKeywords = config.Scan.AuthKeywords
	}
	if config.Scan.SecretMinLength > 0 {
		opts.SecretMinLength = config.Scan.SecretMinLength
	}
	opts.Allowlist = config.Scan.Allowlist
	return risk.NewEngine(tables, opts)
}

func buildProvider(opts scanOptions) risk.EnrichmentProvider {
	if opts.NoEnrich || !config.Enrichment.Enabled {
		return nil
	}
	return registry.New(config.Enrichment.RegistryURL,
		time.Duration(config.Enrichment.TimeoutSeconds)*time.Second)
}
