package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mcpvet/mcpvet/internal/risk"
)

// scanReport is the persisted report.json envelope.
type scanReport struct {
	SchemaVersion  string         `json:"schemaVersion"`
	GeneratedAtUtc string         `json:"generatedAtUtc"`
	Tool           string         `json:"tool"`
	Version        string         `json:"version"`
	TablesVersion  string         `json:"tablesVersion"`
	ConfigFiles    []string       `json:"configFiles"`
	Summary        reportSummary  `json:"summary"`
	Findings       []risk.Finding `json:"findings"`
	Verdict        string         `json:"verdict"`
}

type reportSummary struct {
	ServersScanned       int            `json:"servers_scanned"`
	TotalFindings        int            `json:"total_findings"`
	BySeverity           map[string]int `json:"by_severity"`
	TyposquatsDetected   int            `json:"typosquats_detected"`
	UnverifiedPublishers int            `json:"unverified_publishers"`
	Pass                 bool           `json:"pass"`
}

func reportPath(outDir string) string {
	return filepath.Join(outDir, "report.json")
}

func buildReport(res risk.Result, verdict risk.Verdict, files []string) *scanReport {
	// All five severity keys are always present, zero or not.
	bySev := make(map[string]int, len(risk.Severities))
	for _, s := range risk.Severities {
		bySev[string(s)] = res.BySeverity[s]
	}
	if files == nil {
		files = []string{}
	}
	return &scanReport{
		SchemaVersion:  "1.0",
		GeneratedAtUtc: time.Now().UTC().Format(time.RFC3339),
		Tool:           "mcpvet",
		Version:        Version,
		TablesVersion:  risk.TablesVersion,
		ConfigFiles:    files,
		Summary: reportSummary{
			ServersScanned:       res.TotalServers,
			TotalFindings:        len(res.Findings),
			BySeverity:           bySev,
			TyposquatsDetected:   res.TyposquatCount,
			UnverifiedPublishers: res.UnverifiedPublisherCount,
			Pass:                 risk.Passes(res),
		},
		Findings: res.Findings,
		Verdict:  string(verdict),
	}
}

func printReportJSON(w io.Writer, rep *scanReport) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}

func printReportText(w io.Writer, rep *scanReport) {
	fmt.Fprintf(w, "mcpvet v%s (tables %s)\n", rep.Version, rep.TablesVersion)
	if len(rep.ConfigFiles) == 0 {
		fmt.Fprintln(w, "No tool server config files found.")
	} else {
		for _, f := range rep.ConfigFiles {
			fmt.Fprintf(w, "Config: %s\n", f)
		}
	}
	fmt.Fprintf(w, "Scanned %d server(s)\n\n", rep.Summary.ServersScanned)

	if rep.Summary.TotalFindings == 0 {
		fmt.Fprintln(w, "No findings. All configured servers passed every check.")
		return
	}

	server := ""
	for _, f := range rep.Findings {
		if f.Server != server {
			server = f.Server
			fmt.Fprintf(w, "%s\n", server)
		}
		fmt.Fprintf(w, "  [%s] %s\n", f.Severity, f.Title)
		fmt.Fprintf(w, "      %s\n", f.Detail)
		if f.Advice != "" {
			fmt.Fprintf(w, "      advice: %s\n", f.Advice)
		}
	}

	fmt.Fprintf(w, "\n%d finding(s):", rep.Summary.TotalFindings)
	for _, s := range risk.Severities {
		if n := rep.Summary.BySeverity[string(s)]; n > 0 {
			fmt.Fprintf(w, " %d %s", n, s)
		}
	}
	fmt.Fprintf(w, "\nVerdict: %s\n", rep.Verdict)
}
