// Package config handles loading and managing sheetlens CLI configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sheetlens/sheetlens/pkg/quality"
)

// Config is the top-level configuration for the sheetlens CLI.
type Config struct {
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Quality  QualityConfig  `yaml:"quality"`
	Share    ShareConfig    `yaml:"share"`
}

// AnalyzerConfig points at the remote analysis service.
type AnalyzerConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"` // seconds
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// QualityConfig overrides penalty weights. Zero values keep the defaults.
type QualityConfig struct {
	MissingPerValue int `yaml:"missing_per_value"`
	MissingCap      int `yaml:"missing_cap"`
	PerAlert        int `yaml:"per_alert"`
	PerAnomaly      int `yaml:"per_anomaly"`
}

// ShareConfig controls share link validity.
type ShareConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	w := quality.Defaults()
	return &Config{
		Analyzer: AnalyzerConfig{
			URL:           "http://localhost:8000",
			Timeout:       120,
			MaxUploadSize: 20 << 20,
		},
		Quality: QualityConfig{
			MissingPerValue: w.MissingPerValue,
			MissingCap:      w.MissingCap,
			PerAlert:        w.PerAlert,
			PerAnomaly:      w.PerAnomaly,
		},
		Share: ShareConfig{
			TTLHours: 7 * 24,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .sheetlens/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".sheetlens", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Weights returns the quality weights, falling back to the default for any
// field left at zero.
func (c *Config) Weights() quality.Weights {
	w := quality.Defaults()
	if c.Quality.MissingPerValue > 0 {
		w.MissingPerValue = c.Quality.MissingPerValue
	}
	if c.Quality.MissingCap > 0 {
		w.MissingCap = c.Quality.MissingCap
	}
	if c.Quality.PerAlert > 0 {
		w.PerAlert = c.Quality.PerAlert
	}
	if c.Quality.PerAnomaly > 0 {
		w.PerAnomaly = c.Quality.PerAnomaly
	}
	return w
}

// AnalyzerTimeout returns the analyzer timeout as a duration.
func (c *Config) AnalyzerTimeout() time.Duration {
	if c.Analyzer.Timeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Analyzer.Timeout) * time.Second
}

// ShareTTL returns the share validity window.
func (c *Config) ShareTTL() time.Duration {
	if c.Share.TTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.Share.TTLHours) * time.Hour
}

// CacheDir returns the directory where the CLI keeps downloaded analyses.
// Uses ~/.cache/sheetlens/ so nothing is written next to the spreadsheets.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "sheetlens")
}

// AnalysisDir returns the analysis storage directory.
func AnalysisDir() string {
	return filepath.Join(CacheDir(), "analyses")
}
