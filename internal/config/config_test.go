package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
api:
  base_url: "http://127.0.0.1:9000/"
  timeout: "5s"
  user_agent: "test-agent"

session:
  backend: "redis"
  storage_name: "user"
  redis_addr: "127.0.0.1:6379"
  redis_db: 2
  redis_ttl: "24h"

scan:
  default_identity_hint: "scanner@example.com"

downloads:
  dir: "/tmp/downloads"

log:
  level: "debug"
  format: "json"

metrics:
  addr: ":9464"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// API
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("api.base_url = %q, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("api.timeout = %v, want 5s", cfg.API.Timeout)
	}

	// Session
	if cfg.Session.Backend != SessionBackendRedis {
		t.Errorf("session.backend = %q", cfg.Session.Backend)
	}
	if cfg.Session.RedisDB != 2 {
		t.Errorf("session.redis_db = %d, want 2", cfg.Session.RedisDB)
	}
	if cfg.Session.RedisTTL != 24*time.Hour {
		t.Errorf("session.redis_ttl = %v, want 24h", cfg.Session.RedisTTL)
	}
	if cfg.Session.RedisPrefix != "studybuddy" {
		t.Errorf("session.redis_prefix = %q, want default", cfg.Session.RedisPrefix)
	}

	if cfg.Scan.DefaultIdentityHint != "scanner@example.com" {
		t.Errorf("scan.default_identity_hint = %q", cfg.Scan.DefaultIdentityHint)
	}
	if cfg.Downloads.Dir != "/tmp/downloads" {
		t.Errorf("downloads.dir = %q", cfg.Downloads.Dir)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != ":9464" {
		t.Errorf("metrics.addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("STUDYBUDDY_API_URL", "https://api.example.com")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("api.base_url = %q (ENV override)", cfg.API.BaseURL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://studybuddy-back.onrender.com" {
		t.Errorf("api.base_url = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Session.Backend != SessionBackendFile || cfg.Session.StorageName != "user" {
		t.Errorf("session = %+v, want file backend with storage name user", cfg.Session)
	}
	if cfg.Scan.DefaultIdentityHint != "a@a.com" {
		t.Errorf("scan.default_identity_hint = %q", cfg.Scan.DefaultIdentityHint)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			API:     APIConfig{BaseURL: "https://api.example.com", Timeout: time.Second},
			Session: SessionConfig{Backend: SessionBackendFile, StorageName: "user", Dir: ".studybuddy"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, "base_url"},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host" }, "base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "timeout"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "sqlite" }, "unknown backend"},
		{"redis without addr", func(c *Config) { c.Session.Backend = SessionBackendRedis }, "redis_addr"},
		{"blank storage name", func(c *Config) { c.Session.StorageName = " " }, "storage_name"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ExpandsHomeInPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_DIR", "~/.studybuddy")
	t.Setenv("DOWNLOADS_DIR", "~/Downloads/studybuddy")
	t.Setenv("LOG_FILE", "/var/log/studybuddy.log")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(home, ".studybuddy"); cfg.Session.Dir != want {
		t.Errorf("session.dir = %q, want %q", cfg.Session.Dir, want)
	}
	if want := filepath.Join(home, "Downloads", "studybuddy"); cfg.Downloads.Dir != want {
		t.Errorf("downloads.dir = %q, want %q", cfg.Downloads.Dir, want)
	}
	if cfg.Log.File != "/var/log/studybuddy.log" {
		t.Errorf("log.file = %q, absolute paths are kept", cfg.Log.File)
	}
}
