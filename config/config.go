package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration keys.
const (
	KeyPattern         = "pattern"           // ticket id grammar (regexp)
	KeyStaleDays       = "stale_days"        // age threshold for old-link diagnostics
	KeyMaxChangedFiles = "max_changed_files" // cap on changed files shown in summaries
	KeyBranchPrefix    = "branch_prefix"     // prefix for generated branch names
)

// Defaults for all keys.
var Defaults = map[string]string{
	KeyPattern:         `[A-Za-z]+-[0-9]+`,
	KeyStaleDays:       "30",
	KeyMaxChangedFiles: "5",
	KeyBranchPrefix:    "feature",
}

const (
	globalConfigDir = "branchlink"
	localConfigName = ".branchlink.yaml"
	envPrefix       = "BRANCHLINK_"
)

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source

	// Warnings collects non-fatal issues hit during resolution,
	// such as unparseable config files.
	Warnings []string
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetInt returns the integer value for a key, falling back to the default
// when the configured value does not parse.
func (c *Resolved) GetInt(key string) int {
	if n, err := strconv.Atoi(c.values[key]); err == nil {
		return n
	}
	n, _ := strconv.Atoi(Defaults[key])
	return n
}

// StaleAfter returns the old-link age threshold as a duration.
func (c *Resolved) StaleAfter() time.Duration {
	return time.Duration(c.GetInt(KeyStaleDays)) * 24 * time.Hour
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Resolve builds the final config by merging all sources for a repository.
// Priority (highest to lowest): env > local > global > defaults.
// The local config is <repoRoot>/.branchlink.yaml; pass an empty repoRoot
// to skip local config.
func Resolve(repoRoot string) *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.applyFile(filepath.Join(home, ".config", globalConfigDir, "config.yaml"), SourceGlobal)
	}

	if repoRoot != "" {
		cfg.applyFile(filepath.Join(repoRoot, localConfigName), SourceLocal)
	}

	cfg.applyEnv()

	return cfg
}

// applyFile merges a YAML config file into the resolved set.
// A missing file is not an error; an unparseable one adds a warning.
func (c *Resolved) applyFile(path string, source Source) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if _, known := Defaults[key]; !known {
			continue
		}
		if strVal := toString(value); strVal != "" {
			c.values[key] = strVal
			c.sources[key] = source
		}
	}
}

func (c *Resolved) applyEnv() {
	for key := range Defaults {
		envKey := envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			c.values[key] = value
			c.sources[key] = SourceEnv
		}
	}
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}
