package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readVerdict(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ".mcpvet", "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	var rep scanReport
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	return rep.Verdict
}

func TestWatchRescansOnChange(t *testing.T) {
	dir := setupWorkspace(t, `{
		"mcpServers": {
			"fetch": {"command": "uvx", "args": ["mcp-server-fetch@1.0.0"]}
		}
	}`)
	config.Watch.DebounceMs = 50

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		runWatch(scanOptions{NoEnrich: true}, stop)
		close(done)
	}()
	defer func() {
		close(stop)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("watch loop did not stop")
		}
	}()

	// The initial pass runs before the first event.
	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".mcpvet", "report.json")); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial scan never wrote report.json")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if v := readVerdict(t, dir); v != "warn" {
		t.Fatalf("initial verdict = %s, want warn (known vulnerability)", v)
	}

	// Swap in a malicious server and wait for the debounced rescan.
	update := `{"mcpServers": {"github": {"command": "npx", "args": ["-y", "mcp-servr-github"]}}}`
	if err := os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(update), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline = time.Now().Add(3 * time.Second)
	for {
		if readVerdict(t, dir) == "fail" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("rescan never picked up the change; verdict still %s", readVerdict(t, dir))
		}
		time.Sleep(50 * time.Millisecond)
	}
}
