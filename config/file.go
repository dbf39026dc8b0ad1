// Package config loads tracker configuration from ~/.visatrack/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ScraperConfig holds document fetching settings.
type ScraperConfig struct {
	BaseURL      string `yaml:"base_url"`
	UserAgent    string `yaml:"user_agent"`
	Concurrency  int    `yaml:"concurrency"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

// FileConfig represents the structure of ~/.visatrack/config.yaml.
type FileConfig struct {
	Database   string        `yaml:"database"`
	ListenAddr string        `yaml:"listen_addr"`
	Scraper    ScraperConfig `yaml:"scraper"`
}

// Default returns the configuration used when no file is present.
func Default() *FileConfig {
	return &FileConfig{
		Database:   "visatrack.db",
		ListenAddr: "localhost:8080",
		Scraper: ScraperConfig{
			Concurrency:  1,
			FetchTimeout: "30s",
		},
	}
}

// Load loads configuration from ~/.visatrack/config.yaml, merged over the
// defaults. A missing file is not an error; a file that exists but cannot
// be parsed is.
func Load() (*FileConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return LoadPath(filepath.Join(homeDir, ".visatrack", "config.yaml"))
}

// LoadPath loads configuration from an explicit path, merged over the
// defaults.
func LoadPath(path string) (*FileConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Re-fill anything the file set to a zero value.
	defaults := Default()
	if cfg.Database == "" {
		cfg.Database = defaults.Database
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if cfg.Scraper.Concurrency < 1 {
		cfg.Scraper.Concurrency = defaults.Scraper.Concurrency
	}
	if cfg.Scraper.FetchTimeout == "" {
		cfg.Scraper.FetchTimeout = defaults.Scraper.FetchTimeout
	}

	return cfg, nil
}

// FetchTimeoutDuration parses the configured fetch timeout.
func (c *FileConfig) FetchTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Scraper.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout %q: %w", c.Scraper.FetchTimeout, err)
	}
	return d, nil
}
