// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpclient "ytscribe/http"
)

// Config holds all application configuration for a transcript run.
type Config struct {
	// OutputDir is where transcripts are written, relative to the working directory.
	OutputDir string `env:"YTSCRIBE_OUTPUT_DIR" envDefault:"extracts"`
	// SyncDir is a locally mounted cloud-sync folder. It is used only when it exists.
	SyncDir string `env:"YTSCRIBE_SYNC_DIR"`

	// Languages is the caption language priority list.
	Languages []string `env:"YTSCRIBE_LANGUAGES" envDefault:"en" envSeparator:","`
	// HTTPTimeout bounds every individual HTTP request.
	HTTPTimeout time.Duration `env:"YTSCRIBE_HTTP_TIMEOUT" envDefault:"30s"`
	// UserAgent is sent with page requests (default: desktop Chrome).
	UserAgent string `env:"YTSCRIBE_USER_AGENT"`
	// LineBreaks puts every caption cue on its own line instead of
	// concatenating cue texts.
	LineBreaks bool `env:"YTSCRIBE_LINE_BREAKS"`

	// HistoryPath is the JSON file recording recent runs.
	HistoryPath string `env:"YTSCRIBE_HISTORY_PATH"`
	// HistoryLimit caps the number of history entries kept. Zero disables history.
	HistoryLimit int `env:"YTSCRIBE_HISTORY_LIMIT" envDefault:"20"`

	// LogLevel is a zerolog level name for diagnostics on stderr.
	LogLevel string `env:"YTSCRIBE_LOG_LEVEL" envDefault:"warn"`

	// Bucket configures the optional S3-compatible mirror.
	Bucket BucketConfig `envPrefix:"YTSCRIBE_BUCKET_"`
}

// BucketConfig configures uploads to an S3-compatible bucket (S3, R2, MinIO).
// The mirror is disabled while Name is empty.
type BucketConfig struct {
	Name            string `env:"NAME"`
	Prefix          string `env:"PREFIX" envDefault:"transcripts/"`
	Endpoint        string `env:"ENDPOINT"`
	Region          string `env:"REGION" envDefault:"auto"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

// Enabled reports whether a bucket mirror is configured.
func (b BucketConfig) Enabled() bool {
	return b.Name != ""
}

// DefaultSyncDir is the Google Drive for desktop folder used when YTSCRIBE_SYNC_DIR is unset.
func DefaultSyncDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Google Drive", "My Drive", "youtube-transcripts")
}

// DefaultHistoryPath returns <user config dir>/ytscribe/history.json.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".ytscribe", "history.json")
	}
	return filepath.Join(dir, "ytscribe", "history.json")
}

// Load loads configuration from dotenv files, environment variables and defaults.
// Priority: env vars > dotenv files > defaults. Without arguments ".env" in the
// working directory is tried; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills values that depend on the host environment.
func (c *Config) applyDefaults() {
	if c.SyncDir == "" {
		c.SyncDir = DefaultSyncDir()
	}
	if c.UserAgent == "" {
		c.UserAgent = httpclient.DefaultUserAgent
	}
	if c.HistoryPath == "" {
		c.HistoryPath = DefaultHistoryPath()
	}

	langs := c.Languages[:0]
	for _, lang := range c.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	c.Languages = langs
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages must list at least one language code")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be non-negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	if (c.Bucket.AccessKeyID == "") != (c.Bucket.SecretAccessKey == "") {
		return fmt.Errorf("bucket access key id and secret must be set together")
	}
	return nil
}

// HTTPConfig derives the HTTP client configuration.
func (c *Config) HTTPConfig() *httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = c.HTTPTimeout
	cfg.UserAgent = c.UserAgent
	return cfg
}

// Logger builds the diagnostics logger writing human-readable lines to w.
// The CLI passes stderr so that stdout stays reserved for results.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
