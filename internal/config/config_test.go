package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSolrURL, EnvAPIToken, EnvUsageDB} {
		t.Setenv(k, "")
	}
}

func TestPath(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	xdg.Reload()

	want := "/custom/config/bibstats/config.yml"
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	clearEnv(t)
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Threads != 4 || cfg.ChunkSize != 100 || cfg.MaxHits != 10000 {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `solr_url: http://solr.example/select
threads: 8
timeout: 5s
default_models: [metrics]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SolrURL != "http://solr.example/select" {
		t.Errorf("SolrURL = %q", cfg.SolrURL)
	}
	if cfg.Threads != 8 {
		t.Errorf("Threads = %d, want 8", cfg.Threads)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if len(cfg.DefaultModels) != 1 || cfg.DefaultModels[0] != "metrics" {
		t.Errorf("DefaultModels = %v", cfg.DefaultModels)
	}
	// Unset keys keep their defaults
	if cfg.ChunkSize != 100 {
		t.Errorf("ChunkSize = %d, want 100", cfg.ChunkSize)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("threads: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("solr_url: http://file/select\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSolrURL, "http://env/select")
	t.Setenv(EnvAPIToken, "secret")
	t.Setenv(EnvUsageDB, "/tmp/usage.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SolrURL != "http://env/select" {
		t.Errorf("SolrURL = %q", cfg.SolrURL)
	}
	if cfg.APIToken != "secret" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.UsageDB != "/tmp/usage.db" {
		t.Errorf("UsageDB = %q", cfg.UsageDB)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := Default()
	cfg.Threads = 2
	cfg.Timeout = time.Minute
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Threads != 2 || loaded.Timeout != time.Minute {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty solr url", func(c *Config) { c.SolrURL = "" }, false},
		{"zero threads", func(c *Config) { c.Threads = 0 }, false},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -1 }, false},
		{"zero max hits", func(c *Config) { c.MaxHits = 0 }, false},
		{"negative biblio length", func(c *Config) { c.MinBiblioLength = -1 }, false},
		{"zero rate limit", func(c *Config) { c.RateLimit = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandPath("~/usage.db"); got != filepath.Join(home, "usage.db") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got := ExpandPath("/abs/usage.db"); got != "/abs/usage.db" {
		t.Errorf("ExpandPath() = %q", got)
	}
}
