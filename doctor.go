package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcpvet/mcpvet/internal/mcpconfig"
	"github.com/mcpvet/mcpvet/internal/risk"
	"github.com/mcpvet/mcpvet/internal/support"
)

type doctorReport struct {
	GeneratedAtUtc string           `json:"generatedAtUtc"`
	WorkspaceRoot  string           `json:"workspaceRoot"`
	TablesVersion  string           `json:"tablesVersion"`
	Tables         doctorTables     `json:"tables"`
	Configs        []doctorConfig   `json:"configs"`
	Enrichment     doctorEnrichment `json:"enrichment"`
	Status         string           `json:"status"`
	Reasons        []string         `json:"reasons,omitempty"`
}

type doctorTables struct {
	Valid           bool   `json:"valid"`
	Error           string `json:"error,omitempty"`
	LegitimateCount int    `json:"legitimateCount"`
	MaliciousCount  int    `json:"maliciousCount"`
	VulnPackages    int    `json:"vulnPackages"`
	CredentialRules int    `json:"credentialRules"`
	PermissionRules int    `json:"permissionRules"`
	TrustedScopes   int    `json:"trustedScopes"`
	AuthSignalKeys  int    `json:"authSignalKeys"`
}

type doctorConfig struct {
	Path    string `json:"path"`
	Servers int    `json:"servers"`
	Error   string `json:"error,omitempty"`
}

type doctorEnrichment struct {
	Enabled        bool   `json:"enabled"`
	RegistryURL    string `json:"registryUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// runDoctor checks static data integrity and config discoverability, writes
// doctor.json, and exits nonzero when anything is off.
func runDoctor() {
	report := buildDoctorReport()
	path := filepath.Join(config.Paths.OutputDir, "doctor.json")
	if err := support.WriteJSONAtomic(path, report); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: cannot write doctor.json: %v\n", err)
		os.Exit(3)
	}
	fmt.Printf("Doctor status: %s\n", report.Status)
	for _, r := range report.Reasons {
		fmt.Printf("  - %s\n", r)
	}
	if report.Status != "OK" {
		os.Exit(1)
	}
}

func buildDoctorReport() doctorReport {
	tables := risk.DefaultTables()
	dt := doctorTables{
		Valid:           true,
		LegitimateCount: len(tables.Legitimate),
		MaliciousCount:  len(tables.Malicious),
		VulnPackages:    len(tables.Vulns),
		CredentialRules: len(tables.CredentialRules),
		PermissionRules: len(tables.PermissionRules),
		TrustedScopes:   len(tables.TrustedScopes) + len(config.Scan.ExtraTrustedScopes),
		AuthSignalKeys:  len(tables.AuthSignalKeys),
	}
	status := "OK"
	var reasons []string
	if err := tables.Validate(); err != nil {
		dt.Valid = false
		dt.Error = err.Error()
		status = "DEGRADED"
		reasons = append(reasons, "static tables invalid")
	}

	files := config.Paths.ConfigFiles
	if len(files) == 0 {
		files = mcpconfig.Discover(config.Paths.WorkspaceRoot)
	}
	configs := make([]doctorConfig, 0, len(files))
	for _, f := range files {
		dc := doctorConfig{Path: f}
		specs, err := mcpconfig.LoadFile(f)
		if err != nil {
			dc.Error = err.Error()
			status = "DEGRADED"
			reasons = append(reasons, fmt.Sprintf("config %s unreadable", f))
		} else {
			dc.Servers = len(specs)
		}
		configs = append(configs, dc)
	}
	if len(files) == 0 {
		status = "DEGRADED"
		reasons = append(reasons, "no tool server config files found")
	}

	return doctorReport{
		GeneratedAtUtc: time.Now().UTC().Format(time.RFC3339),
		WorkspaceRoot:  config.Paths.WorkspaceRoot,
		TablesVersion:  risk.TablesVersion,
		Tables:         dt,
		Configs:        configs,
		Enrichment: doctorEnrichment{
			Enabled:        config.Enrichment.Enabled,
			RegistryURL:    config.Enrichment.RegistryURL,
			TimeoutSeconds: config.Enrichment.TimeoutSeconds,
		},
		Status:  status,
		Reasons: reasons,
	}
}
