// Package config handles bibstats configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "bibstats"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables that override file values.
const (
	EnvSolrURL  = "BIBSTATS_SOLR_URL"
	EnvAPIToken = "BIBSTATS_API_TOKEN"
	EnvUsageDB  = "BIBSTATS_USAGE_DB"
)

// Config represents configuration stored in ~/.config/bibstats/config.yml.
type Config struct {
	SolrURL         string        `yaml:"solr_url"`
	APIToken        string        `yaml:"api_token,omitempty"`
	MaxHits         int           `yaml:"max_hits"`
	Threads         int           `yaml:"threads"`
	ChunkSize       int           `yaml:"chunk_size"`
	MinBiblioLength int           `yaml:"min_biblio_length"`
	ReadsFloorYear  int           `yaml:"reads_floor_year"`
	RateLimit       float64       `yaml:"rate_limit"`  // Requests per second
	MaxRetries      int           `yaml:"max_retries"` // Attempts per request
	Timeout         time.Duration `yaml:"timeout"`
	UsageDB         string        `yaml:"usage_db,omitempty"` // SQLite usage store; empty means no usage data
	DefaultModels   []string      `yaml:"default_models"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SolrURL:         "http://localhost:9000/solr/collection1/select",
		MaxHits:         10000,
		Threads:         4,
		ChunkSize:       100,
		MinBiblioLength: 5,
		ReadsFloorYear:  1996,
		RateLimit:       10,
		MaxRetries:      3,
		Timeout:         30 * time.Second,
		DefaultModels:   []string{"statistics", "metrics", "histograms"},
	}
}

// Path returns the default config file path. Respects XDG_CONFIG_HOME.
func Path() string {
	return filepath.Join(xdg.ConfigHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path, or the default path if path is empty,
// layered over Default and followed by environment overrides.
// A missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	cfg := Default()
	data, err := os.ReadFile(ExpandPath(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	cfg.UsageDB = ExpandPath(cfg.UsageDB)
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSolrURL); v != "" {
		c.SolrURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv(EnvUsageDB); v != "" {
		c.UsageDB = v
	}
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Validate checks that the numeric settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.SolrURL == "":
		return fmt.Errorf("%w: solr_url is empty", ErrInvalid)
	case c.Threads <= 0:
		return fmt.Errorf("%w: threads must be positive, got %d", ErrInvalid, c.Threads)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalid, c.ChunkSize)
	case c.MaxHits <= 0:
		return fmt.Errorf("%w: max_hits must be positive, got %d", ErrInvalid, c.MaxHits)
	case c.MinBiblioLength < 0:
		return fmt.Errorf("%w: min_biblio_length must not be negative", ErrInvalid)
	case c.RateLimit <= 0:
		return fmt.Errorf("%w: rate_limit must be positive", ErrInvalid)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
