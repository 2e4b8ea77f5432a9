// mcpvet - static risk scanner for MCP tool server configurations
//
// Commands:
//   scan             Scan configured tool servers and report findings
//   watch            Rescan whenever a config file changes
//   doctor           Check static tables and config discovery
//   --version        Show version information
//   --config <path>  Use specific config file

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	cfgpkg "github.com/mcpvet/mcpvet/internal/config"
	"github.com/mcpvet/mcpvet/internal/risk"
)

// Version information (set at build time)
var (
	Version   = "0.3.0"
	BuildDate = "unknown"
)

// Global config
var config *cfgpkg.Config
var configPath string

// scanOptions carry the flag overrides shared by scan and watch.
type scanOptions struct {
	JSON     bool
	NoEnrich bool
}

func main() {
	args := os.Args[1:]
	configFlag := ""
	rootFlag := ""
	outFlag := ""
	timeoutFlag := 0
	opts := scanOptions{}
	filteredArgs := []string{}

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			configFlag = args[i+1]
			i++
		case args[i] == "--root" && i+1 < len(args):
			rootFlag = args[i+1]
			i++
		case args[i] == "--out" && i+1 < len(args):
			outFlag = args[i+1]
			i++
		case args[i] == "--timeout" && i+1 < len(args):
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "ERROR: invalid --timeout value: %s\n", args[i+1])
				os.Exit(3)
			}
			timeoutFlag = n
			i++
		case args[i] == "--json":
			opts.JSON = true
		case args[i] == "--no-enrich":
			opts.NoEnrich = true
		default:
			filteredArgs = append(filteredArgs, args[i])
		}
	}

	if configFlag != "" {
		if _, err := os.Stat(configFlag); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "ERROR: Config not found: %s\n", configFlag)
				os.Exit(3)
			}
			fmt.Fprintf(os.Stderr, "ERROR: Config stat failed: %v\n", err)
			os.Exit(3)
		}
	}

	cfg, cfgPath, warnings, err := cfgpkg.Resolve(cfgpkg.Flags{ConfigPath: configFlag})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Config load failed: %v\n", err)
		os.Exit(3)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	if rootFlag != "" {
		cfg.Paths.WorkspaceRoot = rootFlag
	}
	if outFlag != "" {
		cfg.Paths.OutputDir = outFlag
	}
	if timeoutFlag > 0 {
		cfg.Enrichment.TimeoutSeconds = timeoutFlag
	}
	config = &cfg
	configPath = cfgPath

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(3)
	}

	switch filteredArgs[0] {
	case "--version", "-v", "version":
		fmt.Printf("mcpvet v%s (built %s, tables %s)\n", Version, BuildDate, risk.TablesVersion)
		if configPath != "" {
			fmt.Printf("Config: %s\n", configPath)
		}

	case "scan":
		os.Exit(runScan(opts))

	case "watch":
		runWatch(opts, nil)

	case "doctor":
		runDoctor()

	case "--help", "-h", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", filteredArgs[0])
		printUsage()
		os.Exit(3)
	}
}

func printUsage() {
	fmt.Println(`mcpvet - static risk scanner for MCP tool server configurations

Usage:
  mcpvet scan [--json] [--no-enrich]       Scan tool server configs and report findings
  mcpvet watch                             Rescan whenever a config file changes
  mcpvet doctor                            Check static tables and config discovery
  mcpvet --version                         Show version information

Flags:
  --config <path>   Use specific mcpvet config file (optional override)
  --root <path>     Workspace root to search for tool server configs
  --out <path>      Output directory (default .mcpvet)
  --timeout <sec>   Per-request registry lookup timeout
  --json            Print the JSON report instead of text
  --no-enrich       Skip registry enrichment entirely

Exit codes:
  0 pass, 1 warn (high findings), 2 fail (critical findings), 3 usage or config error`)
}
