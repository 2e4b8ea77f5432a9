// Package mcpconfig discovers and parses tool-server configuration files in
// the formats used by common MCP clients, normalizing them into server specs.
package mcpconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mcpvet/mcpvet/internal/risk"
	"github.com/mcpvet/mcpvet/internal/support"
)

// wellKnownFiles are searched under the workspace root, in this order.
var wellKnownFiles = []string{
	".mcp.json",
	"mcp.json",
	".vscode/mcp.json",
	".cursor/mcp.json",
	"claude_desktop_config.json",
	".continue/config.yaml",
	".goose/config.yaml",
	"librechat.yaml",
}

// serverEntry is the union of the per-server fields across client formats.
type serverEntry struct {
	Command   string                 `yaml:"command"`
	Args      []string               `yaml:"args"`
	Env       map[string]interface{} `yaml:"env"`
	Transport string                 `yaml:"transport"`
	Type      string                 `yaml:"type"`
	URL       string                 `yaml:"url"`
}

// document is the union of the top-level shapes: Claude's mcpServers,
// VSCode's servers, Goose's mcp_servers, and the nested mcp block used by
// LibreChat (mcp.servers) and Continue (mcp as a direct map).
type document struct {
	MCPServers map[string]serverEntry `yaml:"mcpServers"`
	Servers    map[string]serverEntry `yaml:"servers"`
	MCPSnake   map[string]serverEntry `yaml:"mcp_servers"`
	MCP        mcpBlock               `yaml:"mcp"`
}

type mcpBlock struct {
	Servers map[string]serverEntry `yaml:"servers"`
	direct  map[string]serverEntry
}

// UnmarshalYAML accepts both the nested {servers: {...}} form and a direct
// name-to-entry map under the mcp key.
func (b *mcpBlock) UnmarshalYAML(value *yaml.Node) error {
	type nested struct {
		Servers map[string]serverEntry `yaml:"servers"`
	}
	var n nested
	if err := value.Decode(&n); err == nil && n.Servers != nil {
		b.Servers = n.Servers
		return nil
	}
	var direct map[string]serverEntry
	if err := value.Decode(&direct); err != nil {
		return err
	}
	// A direct map would have decoded a "servers" key as a serverEntry with
	// empty fields; the nested branch above already claimed that shape.
	b.direct = direct
	return nil
}

// Discover returns the well-known config files that exist under root, in
// search order.
func Discover(root string) []string {
	var out []string
	for _, rel := range wellKnownFiles {
		p := filepath.Join(root, rel)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// LoadFile parses one config file into normalized server specs, sorted by
// name. YAML is a superset of JSON, so one decoder covers every format.
func LoadFile(path string) ([]risk.ServerSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(support.StripBOM(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	entries := doc.MCPServers
	if entries == nil {
		entries = doc.Servers
	}
	if entries == nil {
		entries = doc.MCPSnake
	}
	if entries == nil {
		entries = doc.MCP.Servers
	}
	if entries == nil {
		entries = doc.MCP.direct
	}

	specs := make([]risk.ServerSpec, 0, len(entries))
	for name, e := range entries {
		env := make(map[string]string, len(e.Env))
		for k, v := range e.Env {
			env[k] = fmt.Sprint(v)
		}
		if len(env) == 0 {
			env = nil
		}
		transport := e.Transport
		if transport == "" {
			transport = e.Type
		}
		specs = append(specs, risk.ServerSpec{
			Name:      name,
			Command:   e.Command,
			Args:      e.Args,
			Env:       env,
			Transport: transport,
			URL:       e.URL,
			Source:    path,
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// LoadAll loads every file and merges the specs. When two files declare the
// same server name the first file wins; later duplicates are dropped with a
// warning.
func LoadAll(paths []string) ([]risk.ServerSpec, []string, error) {
	var all []risk.ServerSpec
	var warnings []string
	seen := make(map[string]string)

	for _, p := range paths {
		specs, err := LoadFile(p)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range specs {
			if prev, dup := seen[s.Name]; dup {
				warnings = append(warnings, fmt.Sprintf("server %q in %s shadowed by %s", s.Name, p, prev))
				continue
			}
			seen[s.Name] = p
			all = append(all, s)
		}
	}
	return all, warnings, nil
}
