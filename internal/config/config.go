package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the compiled-in configuration with optional overrides.
type Config struct {
	SchemaVersion string           `json:"schemaVersion"`
	App           AppConfig        `json:"app"`
	Paths         PathsConfig      `json:"paths"`
	Scan          ScanConfig       `json:"scan"`
	Enrichment    EnrichmentConfig `json:"enrichment"`
	Watch         WatchConfig      `json:"watch"`
	Logging       LoggingConfig    `json:"logging"`
}

type AppConfig struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
}

type PathsConfig struct {
	WorkspaceRoot string `json:"workspaceRoot"`
	OutputDir     string `json:"outputDir"`
	// ConfigFiles are explicit tool-server config paths. When empty the
	// well-known locations under the workspace root are searched.
	ConfigFiles []string `json:"configFiles"`
}

type ScanConfig struct {
	MaxEditDistance int         `json:"maxEditDistance"`
	MinSimilarity   float64     `json:"minSimilarity"`
	Confusables     [][2]string `json:"confusables"`
	AuthKeywords    []string    `json:"authKeywords"`
	SecretMinLength int         `json:"secretMinLength"`
	// Allowlist holds glob patterns for packages trusted by local policy.
	Allowlist []string `json:"allowlist"`
	// ExtraTrustedScopes extends the built-in trusted publisher scopes.
	ExtraTrustedScopes []string `json:"extraTrustedScopes"`
}

type EnrichmentConfig struct {
	Enabled        bool   `json:"enabled"`
	RegistryURL    string `json:"registryUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type WatchConfig struct {
	DebounceMs int `json:"debounceMs"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

type Flags struct {
	ConfigPath string
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		SchemaVersion: "1.0",
		App: AppConfig{
			Name:    "mcpvet",
			Channel: "release",
		},
		Paths: PathsConfig{
			WorkspaceRoot: ".",
			OutputDir:     ".mcpvet",
		},
		Scan: ScanConfig{
			MaxEditDistance: 3,
			MinSimilarity:   0.75,
			Confusables: [][2]string{
				{"l", "1"},
				{"i", "1"},
				{"rn", "m"},
				{"0", "o"},
				{"vv", "w"},
				{"cl", "d"},
				{"5", "s"},
			},
			AuthKeywords: []string{
				"github", "gitlab", "slack", "postgres", "mysql", "database",
				"aws", "stripe", "jira", "notion", "sentry", "supabase", "linear",
			},
			SecretMinLength: 8,
		},
		Enrichment: EnrichmentConfig{
			Enabled:        true,
			RegistryURL:    "https://registry.npmjs.org",
			TimeoutSeconds: 10,
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Load reads a JSON config from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies defaults and optional overrides, then validates.
func Resolve(flags Flags) (Config, string, []string, error) {
	cfg := Default()
	var cfgPath string
	var warnings []string

	if flags.ConfigPath != "" {
		loaded, err := Load(flags.ConfigPath)
		if err != nil {
			return Config{}, "", nil, err
		}
		mergeConfigDefaults(&loaded, &cfg)
		cfg = loaded
		cfgPath = flags.ConfigPath
	}

	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = "1.0"
	}
	if cfg.Scan.MinSimilarity >= 1.0 {
		cfg.Scan.MinSimilarity = Default().Scan.MinSimilarity
		warnings = append(warnings, "minSimilarity must be below 1.0; reset to default")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", nil, err
	}

	return cfg, cfgPath, warnings, nil
}

// Validate checks the resolved configuration for consistency.
func (c *Config) Validate() error {
	if c.SchemaVersion != "1.0" {
		return fmt.Errorf("unsupported schemaVersion: %s (expected 1.0)", c.SchemaVersion)
	}
	if c.Scan.MaxEditDistance < 1 {
		return fmt.Errorf("scan.maxEditDistance must be at least 1, got %d", c.Scan.MaxEditDistance)
	}
	if c.Scan.MinSimilarity < 0 || c.Scan.MinSimilarity >= 1 {
		return fmt.Errorf("scan.minSimilarity must be in [0, 1), got %v", c.Scan.MinSimilarity)
	}
	if c.Enrichment.TimeoutSeconds < 1 {
		return fmt.Errorf("enrichment.timeoutSeconds must be at least 1, got %d", c.Enrichment.TimeoutSeconds)
	}
	return nil
}

func mergeConfigDefaults(cfg *Config, defaults *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = defaults.App.Name
	}
	if cfg.App.Channel == "" {
		cfg.App.Channel = defaults.App.Channel
	}
	if cfg.Paths.WorkspaceRoot == "" {
		cfg.Paths.WorkspaceRoot = defaults.Paths.WorkspaceRoot
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = defaults.Paths.OutputDir
	}
	if cfg.Scan.MaxEditDistance == 0 {
		cfg.Scan.MaxEditDistance = defaults.Scan.MaxEditDistance
	}
	if cfg.Scan.MinSimilarity == 0 {
		cfg.Scan.MinSimilarity = defaults.Scan.MinSimilarity
	}
	if len(cfg.Scan.Confusables) == 0 {
		cfg.Scan.Confusables = defaults.Scan.Confusables
	}
	if len(cfg.Scan.AuthKeywords) == 0 {
		cfg.Scan.AuthKeywords = defaults.Scan.AuthKeywords
	}
	if cfg.Scan.SecretMinLength == 0 {
		cfg.Scan.SecretMinLength = defaults.Scan.SecretMinLength
	}
	if !cfg.Enrichment.Enabled {
		cfg.Enrichment.Enabled = defaults.Enrichment.Enabled
	}
	if cfg.Enrichment.RegistryURL == "" {
		cfg.Enrichment.RegistryURL = defaults.Enrichment.RegistryURL
	}
	if cfg.Enrichment.TimeoutSeconds == 0 {
		cfg.Enrichment.TimeoutSeconds = defaults.Enrichment.TimeoutSeconds
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}
