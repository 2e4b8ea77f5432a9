package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcpvet/mcpvet/internal/mcpconfig"
)

// runWatch rescans whenever a discovered config file changes. Editors
// replace files rather than writing in place, so the parent directories are
// watched and events are filtered by name.
func runWatch(opts scanOptions, stop <-chan struct{}) {
	files := config.Paths.ConfigFiles
	if len(files) == 0 {
		files = mcpconfig.Discover(config.Paths.WorkspaceRoot)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no tool server config files to watch")
		os.Exit(3)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: watch init failed: %v\n", err)
		os.Exit(3)
	}
	defer watcher.Close()

	watched := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: watch failed for %s: %v\n", d, err)
			os.Exit(3)
		}
	}

	trigger := func() {
		if _, code, err := executeScan(opts, "watch"); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: rescan failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "rescan complete (exit %d)\n", code)
		}
	}
	trigger()

	var timer *time.Timer
	debounce := time.Duration(config.Watch.DebounceMs) * time.Millisecond

	for {
		select {
		case <-stop:
			return
		case ev := <-watcher.Events:
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = ev.Name
			}
			if _, ok := watched[abs]; !ok {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, trigger)
		case err := <-watcher.Errors:
			fmt.Fprintf(os.Stderr, "ERROR: watch error: %v\n", err)
		}
	}
}
