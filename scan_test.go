package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/mcpvet/mcpvet/internal/config"
)

func setupWorkspace(t *testing.T, mcpJSON string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(mcpJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := cfgpkg.Default()
	cfg.Paths.WorkspaceRoot = dir
	cfg.Paths.OutputDir = filepath.Join(dir, ".mcpvet")
	config = &cfg
	return dir
}

func TestExecuteScanFailsOnMaliciousServer(t *testing.T) {
	dir := setupWorkspace(t, `{
		"mcpServers": {
			"github": {
				"command": "npx",
				"args": ["-y", "mcp-servr-github"],
				"env": {"GITHUB_TOKEN": "$GITHUB_TOKEN"}
			}
		}
	}`)

	rep, code, err := executeScan(scanOptions{NoEnrich: true}, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if rep.Verdict != "fail" {
		t.Errorf("verdict = %s, want fail", rep.Verdict)
	}
	if rep.Summary.TyposquatsDetected != 1 {
		t.Errorf("typosquats = %d, want 1", rep.Summary.TyposquatsDetected)
	}
	if rep.Summary.Pass {
		t.Error("pass = true with a critical finding")
	}
	for _, s := range []string{"critical", "high", "medium", "low", "info"} {
		if _, ok := rep.Summary.BySeverity[s]; !ok {
			t.Errorf("summary missing severity key %s", s)
		}
	}

	// report.json and the audit line land in the output dir.
	data, err := os.ReadFile(filepath.Join(dir, ".mcpvet", "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	var persisted scanReport
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatal(err)
	}
	if persisted.Verdict != "fail" {
		t.Errorf("persisted verdict = %s", persisted.Verdict)
	}

	f, err := os.Open(filepath.Join(dir, ".mcpvet", "audit.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	if lines != 1 {
		t.Errorf("audit.log has %d lines, want 1", lines)
	}
}

func TestExecuteScanCleanWorkspace(t *testing.T) {
	setupWorkspace(t, `{
		"mcpServers": {
			"memory": {
				"command": "npx",
				"args": ["-y", "@modelcontextprotocol/server-memory@1.0.2"],
				"env": {"MEMORY_DIR": "/tmp/memory"}
			}
		}
	}`)

	rep, code, err := executeScan(scanOptions{NoEnrich: true}, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !rep.Summary.Pass || rep.Summary.TotalFindings != 0 {
		t.Errorf("summary = %+v, want clean pass", rep.Summary)
	}

	var buf strings.Builder
	printReportText(&buf, rep)
	if !strings.Contains(buf.String(), "No findings") {
		t.Errorf("text report missing explicit clean message:\n%s", buf.String())
	}
}

func TestExecuteScanEmptyWorkspace(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Paths.WorkspaceRoot = dir
	cfg.Paths.OutputDir = filepath.Join(dir, ".mcpvet")
	config = &cfg

	rep, code, err := executeScan(scanOptions{NoEnrich: true}, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if rep.Summary.ServersScanned != 0 {
		t.Errorf("serversScanned = %d, want 0", rep.Summary.ServersScanned)
	}
}

func TestExecuteScanMalformedConfigIsFatal(t *testing.T) {
	setupWorkspace(t, `{"mcpServers": {`)
	if _, _, err := executeScan(scanOptions{NoEnrich: true}, "scan"); err == nil {
		t.Error("malformed config should be a fatal error")
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	setupWorkspace(t, `{
		"mcpServers": {
			"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]}
		}
	}`)

	rep, _, err := executeScan(scanOptions{NoEnrich: true}, "scan")
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	printReportJSON(&buf, rep)
	var back scanReport
	if err := json.Unmarshal([]byte(buf.String()), &back); err != nil {
		t.Fatal(err)
	}
	if back.Summary.TotalFindings != rep.Summary.TotalFindings {
		t.Errorf("round trip lost findings: %d vs %d", back.Summary.TotalFindings, rep.Summary.TotalFindings)
	}
	if back.TablesVersion == "" {
		t.Error("tablesVersion missing from report")
	}
}

func TestBuildDoctorReport(t *testing.T) {
	setupWorkspace(t, `{"mcpServers": {"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]}}}`)

	rep := buildDoctorReport()
	if rep.Status != "OK" {
		t.Errorf("status = %s (%v), want OK", rep.Status, rep.Reasons)
	}
	if !rep.Tables.Valid || rep.Tables.LegitimateCount == 0 || rep.Tables.MaliciousCount == 0 {
		t.Errorf("tables = %+v", rep.Tables)
	}
	if len(rep.Configs) != 1 || rep.Configs[0].Servers != 1 {
		t.Errorf("configs = %+v", rep.Configs)
	}
}

func TestBuildDoctorReportDegradedWithoutConfigs(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Paths.WorkspaceRoot = dir
	cfg.Paths.OutputDir = filepath.Join(dir, ".mcpvet")
	config = &cfg

	rep := buildDoctorReport()
	if rep.Status != "DEGRADED" {
		t.Errorf("status = %s, want DEGRADED when nothing is discoverable", rep.Status)
	}
}
