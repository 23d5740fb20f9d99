// Package platform holds the daemon's process-level plumbing: environment
// configuration, logging and database migrations.
package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/storage"
)

// ServerConfig is the sheetlensd configuration, read from the environment.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Env         string `env:"SHEETLENS_ENV" env-default:"production"`
	DatabaseURL string `env:"DATABASE_URL" env-default:""` // empty keeps everything in memory
	APIKey      string `env:"API_KEY" env-default:""`      // empty disables auth

	Storage  StorageConfig
	Analyzer AnalyzerConfig

	CacheSize          int `env:"ANALYSIS_CACHE_SIZE" env-default:"50"`
	ShareTTLHours      int `env:"SHARE_TTL_HOURS" env-default:"168"`
	SharePurgeInterval int `env:"SHARE_PURGE_MINUTES" env-default:"60"`
	// Expired shares keep answering "expired" for this long before they are purged.
	ShareRetentionDays int `env:"SHARE_RETENTION_DAYS" env-default:"30"`
}

// StorageConfig selects the analysis blob backend.
type StorageConfig struct {
	Backend    string `env:"STORAGE_BACKEND" env-default:"local"`
	LocalPath  string `env:"LOCAL_STORAGE_PATH" env-default:"/tmp/sheetlens-data"`
	Bucket     string `env:"STORAGE_BUCKET" env-default:""`
	S3Region   string `env:"S3_REGION" env-default:""`
	S3Endpoint string `env:"S3_ENDPOINT" env-default:""`
	S3Access   string `env:"S3_ACCESS_KEY" env-default:""`
	S3Secret   string `env:"S3_SECRET_KEY" env-default:""`
}

// AnalyzerConfig points at the remote analysis service.
type AnalyzerConfig struct {
	URL            string `env:"ANALYZER_URL" env-default:"http://localhost:8000"`
	TimeoutSeconds int    `env:"ANALYZER_TIMEOUT_SECONDS" env-default:"120"`
	MaxUploadMB    int64  `env:"ANALYZER_MAX_UPLOAD_MB" env-default:"20"`
}

// LoadServerConfig reads ServerConfig from environment variables and validates it.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *ServerConfig) Validate() error {
	switch c.Storage.Backend {
	case "local":
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for %s storage", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want local, s3 or gcs)", c.Storage.Backend)
	}
	if c.Analyzer.URL == "" {
		return fmt.Errorf("ANALYZER_URL is required")
	}
	if c.ShareRetentionDays < 0 {
		return fmt.Errorf("SHARE_RETENTION_DAYS must not be negative")
	}
	return nil
}

// IsLocal reports whether the daemon runs in a development environment.
func (c *ServerConfig) IsLocal() bool {
	switch strings.ToLower(c.Env) {
	case "local", "dev", "development":
		return true
	}
	return false
}

// StorageOptions converts the storage settings for storage.New.
func (c *ServerConfig) StorageOptions() storage.Config {
	return storage.Config{
		Backend:   c.Storage.Backend,
		LocalPath: c.Storage.LocalPath,
		Bucket:    c.Storage.Bucket,
		S3: storage.S3Config{
			Bucket:    c.Storage.Bucket,
			Region:    c.Storage.S3Region,
			Endpoint:  c.Storage.S3Endpoint,
			AccessKey: c.Storage.S3Access,
			SecretKey: c.Storage.S3Secret,
		},
	}
}

// AnalyzerTimeout returns the analyzer request timeout.
func (c *ServerConfig) AnalyzerTimeout() time.Duration {
	return time.Duration(c.Analyzer.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *ServerConfig) MaxUploadBytes() int64 {
	return c.Analyzer.MaxUploadMB << 20
}

// ShareTTL returns the share validity window.
func (c *ServerConfig) ShareTTL() time.Duration {
	return time.Duration(c.ShareTTLHours) * time.Hour
}

// ShareRetention returns how long expired shares are kept.
func (c *ServerConfig) ShareRetention() time.Duration {
	return time.Duration(c.ShareRetentionDays) * 24 * time.Hour
}

// PurgeInterval returns how often expired shares are removed.
func (c *ServerConfig) PurgeInterval() time.Duration {
	return time.Duration(c.SharePurgeInterval) * time.Minute
}

// NewLogger builds a development logger for local environments and a
// production (JSON) logger otherwise.
func NewLogger(cfg *ServerConfig) (*zap.Logger, error) {
	if cfg.IsLocal() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
