// Package risk implements the static risk-evaluation pipeline for tool
// server configurations: typosquat detection, credential/permission/transport
// pattern rules, vulnerability lookup, publisher trust, structural checks,
// finding aggregation and the scan verdict.
package risk

import (
	"fmt"
	"strings"
)

// Severity is the fixed five-value finding severity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists the enum in descending order of urgency.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// Rank returns an integer rank for comparison (info=1, critical=5).
// Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityLow:
		return 2
	case SeverityMedium:
		return 3
	case SeverityHigh:
		return 4
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

// Valid reports whether s is one of the five enum values.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity string case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "info", "informational":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("invalid severity: %s", s)
	}
}

// ServerSpec is the normalized, read-only view of one configured tool server.
// The config provider owns construction; the core never mutates it.
type ServerSpec struct {
	Name      string            `json:"name"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Transport string            `json:"transport,omitempty"`
	URL       string            `json:"url,omitempty"`
	Source    string            `json:"source,omitempty"`
}

// Finding is the atomic scan output unit. Identity for per-server
// deduplication is the (Title, Detail) pair.
type Finding struct {
	Server   string            `json:"server"`
	Package  string            `json:"package,omitempty"`
	Type     string            `json:"type"`
	Severity Severity          `json:"severity"`
	Title    string            `json:"title"`
	Detail   string            `json:"detail"`
	Advice   string            `json:"advice,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Finding types emitted by the pipeline.
const (
	TypeTyposquat             = "typosquat"
	TypeVulnerability         = "known-vulnerability"
	TypeUnverifiedPublisher   = "unverified-publisher"
	TypeCredential            = "exposed-credential"
	TypeInlinedSecret         = "inlined-secret"
	TypePermission            = "excessive-permissions"
	TypeInsecureTransport     = "insecure-transport"
	TypeUnauthTransport       = "unauthenticated-transport"
	TypeMissingAuth           = "missing-authentication"
	TypeUnpinnedVersion       = "unpinned-version"
	TypeRegistryMissing       = "registry-missing"
	TypeRegistrySignal        = "registry-signal"
	TypeEnrichmentUnavailable = "enrichment-unavailable"
)

// Result is the aggregate outcome of one scan invocation.
type Result struct {
	TotalServers             int              `json:"totalServers"`
	Findings                 []Finding        `json:"findings"`
	BySeverity               map[Severity]int `json:"bySeverity"`
	TyposquatCount           int              `json:"typosquatCount"`
	UnverifiedPublisherCount int              `json:"unverifiedPublisherCount"`
}
