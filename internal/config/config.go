// Package config provides configuration management for advisorymap.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
)

// Config represents the application configuration.
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	SkipRegions []string          `yaml:"skip_regions"`
	ISOCodes    string            `yaml:"iso_codes"`
	Synthetic   []SyntheticConfig `yaml:"synthetic"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SourceConfig holds settings for talking to the advisory site.
type SourceConfig struct {
	RootURL   string        `yaml:"root_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Workers   int           `yaml:"workers"`
}

// SyntheticConfig is an entry added to every run regardless of the listing.
type SyntheticConfig struct {
	DisplayName string         `yaml:"display_name"`
	Directory   string         `yaml:"directory"`
	IsoCode     string         `yaml:"iso_code"`
	Level       advisory.Level `yaml:"level"`
}

// OutputConfig holds the paths the run writes to.
type OutputConfig struct {
	Snapshot string `yaml:"snapshot"`
	Map      string `yaml:"map"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var isoCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Source: SourceConfig{
			RootURL: "https://travel.gc.ca",
			Timeout: 30 * time.Second,
			Workers: 4,
		},
		SkipRegions: []string{"Azores", "Canary Islands", "Saint-Pierre-et-Miquelon"},
		Synthetic: []SyntheticConfig{
			{DisplayName: "Canada", Directory: "canada", IsoCode: "CA", Level: advisory.Normal},
			{DisplayName: "Svalbard and Jan Mayen", Directory: "norway", IsoCode: "SJ", Level: advisory.Normal},
			{DisplayName: "Western Sahara", Directory: "morocco", IsoCode: "EH", Level: advisory.AvoidNonEssentialTravel},
		},
		Output: OutputConfig{
			Snapshot: "data/entries.json",
			Map:      "data/map.html",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile reads configuration from a YAML file and expands environment variables.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Source.RootURL = getEnv("ADVISORYMAP_ROOT_URL", cfg.Source.RootURL)
	cfg.Source.UserAgent = getEnv("ADVISORYMAP_USER_AGENT", cfg.Source.UserAgent)
	cfg.Source.Timeout = getEnvDuration("ADVISORYMAP_TIMEOUT", cfg.Source.Timeout)
	cfg.Source.Workers = getEnvInt("ADVISORYMAP_WORKERS", cfg.Source.Workers)
	cfg.ISOCodes = getEnv("ADVISORYMAP_ISO_CODES", cfg.ISOCodes)
	cfg.Output.Snapshot = getEnv("ADVISORYMAP_SNAPSHOT_PATH", cfg.Output.Snapshot)
	cfg.Output.Map = getEnv("ADVISORYMAP_MAP_PATH", cfg.Output.Map)
	cfg.Logging.Level = getEnv("ADVISORYMAP_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("ADVISORYMAP_LOG_FORMAT", cfg.Logging.Format)
}

// Validate checks the configuration for values the run cannot work with.
func (c *Config) Validate() error {
	if c.Source.RootURL == "" {
		return errors.New("source root_url is required")
	}
	if c.Source.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d", c.Source.Workers)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Source.Timeout)
	}
	if c.Output.Snapshot == "" || c.Output.Map == "" {
		return errors.New("output snapshot and map paths are required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	seen := make(map[string]bool)
	for _, s := range c.Synthetic {
		if !isoCodePattern.MatchString(s.IsoCode) {
			return fmt.Errorf("invalid synthetic iso code %q for %s", s.IsoCode, s.DisplayName)
		}
		if seen[s.IsoCode] {
			return fmt.Errorf("duplicate synthetic iso code %q", s.IsoCode)
		}
		seen[s.IsoCode] = true
		if !s.Level.Valid() {
			return fmt.Errorf("invalid synthetic level for %s", s.IsoCode)
		}
	}

	return nil
}

// SkipSet returns the skip regions as a set.
func (c *Config) SkipSet() map[string]bool {
	skip := make(map[string]bool, len(c.SkipRegions))
	for _, region := range c.SkipRegions {
		skip[strings.TrimSpace(region)] = true
	}
	return skip
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
