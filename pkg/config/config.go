// Package config loads heron.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "heron.yaml"

// EnvPrefix prefixes environment overrides, e.g. HERON_RESOLVE_MODE=raw.
const EnvPrefix = "HERON"

// Resolution modes.
const (
	ModeVerified = "verified"
	ModeRaw      = "raw"
)

// Config represents heron.yaml
type Config struct {
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Resolve  ResolveConfig  `yaml:"resolve" mapstructure:"resolve"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

// ScanConfig controls file discovery and import extraction
type ScanConfig struct {
	Extensions     []string `yaml:"extensions" mapstructure:"extensions"`
	PackageMarkers []string `yaml:"package_markers" mapstructure:"package_markers"`
	IgnoreDirs     []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
	IgnorePatterns []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
	Workers        int      `yaml:"workers" mapstructure:"workers"`
	MaxFileSize    int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
}

// ResolveConfig controls how import specs become edges
type ResolveConfig struct {
	Mode            string `yaml:"mode" mapstructure:"mode"`
	SuggestDistance int    `yaml:"suggest_distance" mapstructure:"suggest_distance"`
}

// AnalysisConfig holds graph analysis settings
type AnalysisConfig struct {
	EntryPoints []string `yaml:"entry_points" mapstructure:"entry_points"`
	CountLines  bool     `yaml:"count_lines" mapstructure:"count_lines"`
}

// OutputConfig selects the artifacts a scan writes
type OutputConfig struct {
	JSON      string `yaml:"json" mapstructure:"json"`
	DOT       string `yaml:"dot" mapstructure:"dot"`
	Tree      bool   `yaml:"tree" mapstructure:"tree"`
	TreeDepth int    `yaml:"tree_depth" mapstructure:"tree_depth"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:     []string{".py"},
			PackageMarkers: []string{"__init__"},
			IgnoreDirs:     []string{"venv", ".venv", ".git", "__pycache__"},
			MaxFileSize:    10 * 1024 * 1024,
		},
		Resolve: ResolveConfig{
			Mode:            ModeVerified,
			SuggestDistance: 2,
		},
		Analysis: AnalysisConfig{
			EntryPoints: []string{},
			CountLines:  true,
		},
		Output: OutputConfig{
			TreeDepth: 5,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Resolve.Mode {
	case ModeVerified, ModeRaw:
	default:
		return fmt.Errorf("resolve.mode must be %q or %q, got %q", ModeVerified, ModeRaw, c.Resolve.Mode)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers)
	}
	if c.Output.TreeDepth < 1 {
		return fmt.Errorf("output.tree_depth must be at least 1, got %d", c.Output.TreeDepth)
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must not be empty")
	}
	return nil
}

// LoadConfig reads path (or heron.yaml in dir when path is a directory).
// A missing file yields DefaultConfig. Environment variables prefixed with
// HERON_ override file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.package_markers", d.Scan.PackageMarkers)
	v.SetDefault("scan.ignore_dirs", d.Scan.IgnoreDirs)
	v.SetDefault("scan.ignore_patterns", d.Scan.IgnorePatterns)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.max_file_size", d.Scan.MaxFileSize)
	v.SetDefault("resolve.mode", d.Resolve.Mode)
	v.SetDefault("resolve.suggest_distance", d.Resolve.SuggestDistance)
	v.SetDefault("analysis.entry_points", d.Analysis.EntryPoints)
	v.SetDefault("analysis.count_lines", d.Analysis.CountLines)
	v.SetDefault("output.json", d.Output.JSON)
	v.SetDefault("output.dot", d.Output.DOT)
	v.SetDefault("output.tree", d.Output.Tree)
	v.SetDefault("output.tree_depth", d.Output.TreeDepth)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// SaveConfig writes configuration to a YAML file
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
