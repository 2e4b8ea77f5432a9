package support

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one line of the append-only scan audit log.
type AuditEntry struct {
	ScanID               string `json:"scanId"`
	TimestampUtc         string `json:"timestampUtc"`
	Mode                 string `json:"mode"`
	ServersScanned       int    `json:"serversScanned"`
	TotalFindings        int    `json:"totalFindings"`
	CriticalCount        int    `json:"criticalCount"`
	HighCount            int    `json:"highCount"`
	Typosquats           int    `json:"typosquats"`
	UnverifiedPublishers int    `json:"unverifiedPublishers"`
	Verdict              string `json:"verdict"`
}

// AppendAudit appends one entry to <outDir>/audit.log. The scan id and
// timestamp are filled in when absent.
func AppendAudit(outDir string, entry AuditEntry) error {
	if entry.ScanID == "" {
		entry.ScanID = uuid.NewString()
	}
	if entry.TimestampUtc == "" {
		entry.TimestampUtc = time.Now().UTC().Format(time.RFC3339)
	}
	path := filepath.Join(outDir, "audit.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}
