package support

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAudit(t *testing.T) {
	dir := t.TempDir()

	first := AuditEntry{Mode: "scan", ServersScanned: 3, Verdict: "fail", CriticalCount: 1}
	second := AuditEntry{Mode: "watch", ServersScanned: 3, Verdict: "pass"}
	if err := AppendAudit(dir, first); err != nil {
		t.Fatal(err)
	}
	if err := AppendAudit(dir, second); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "audit.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Mode != "scan" || entries[1].Mode != "watch" {
		t.Errorf("append order lost: %s, %s", entries[0].Mode, entries[1].Mode)
	}
	for i, e := range entries {
		if e.ScanID == "" {
			t.Errorf("entry %d missing scanId", i)
		}
		if e.TimestampUtc == "" {
			t.Errorf("entry %d missing timestamp", i)
		}
	}
	if entries[0].ScanID == entries[1].ScanID {
		t.Error("scan ids should be unique per entry")
	}
}
