package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Workspace   string  `koanf:"workspace"`  // Root directory (or file) to analyze
	WebMode     bool    `koanf:"web"`
	Port        int     `koanf:"port"`
	Watch       bool    `koanf:"watch"`
	OpenBrowser bool    `koanf:"open"`
	Layout      string  `koanf:"layout"`     // force, hierarchical, radial or organic
	Impact      string  `koanf:"impact"`     // Symbol to run impact analysis for (console mode)
	File        string  `koanf:"file"`       // Optional file hint for --impact
	External    bool    `koanf:"external"`   // Keep external-module nodes in the graph
	Confidence  float64 `koanf:"confidence"` // Minimum advisor suggestion confidence
	Include     string  `koanf:"include"`    // Comma-separated path substrings to keep
	Exclude     string  `koanf:"exclude"`    // Comma-separated path substrings to drop
	JSONLogs    bool    `koanf:"jsonlogs"`
	Verbosity   string  `koanf:"verbosity"`
	VerboseCnt  int     `koanf:"verbose"`
}

// IncludePatterns returns the include filter as a slice
func (c *Config) IncludePatterns() []string {
	return splitCSV(c.Include)
}

// ExcludePatterns returns the exclude filter as a slice
func (c *Config) ExcludePatterns() []string {
	return splitCSV(c.Exclude)
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"workspace":  ".",
		"web":        false,
		"port":       8080,
		"watch":      false,
		"open":       true,
		"layout":     "force",
		"impact":     "",
		"file":       "",
		"external":   false,
		"confidence": 0.5,
		"include":    "",
		"exclude":    "",
		"jsonlogs":   false,
		"verbosity":  "",
		"verbose":    0,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - code-intel.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("code-intel.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: CODE_INTEL_ (e.g., CODE_INTEL_PORT=9090)
	if err := k.Load(env.Provider("CODE_INTEL_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "CODE_INTEL_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
