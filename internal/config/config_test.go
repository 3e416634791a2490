package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"urldeck/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("URLDECK_LIST_FILE", "")
	t.Setenv("URLDECK_USER_AGENT", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, "urls.txt"); cfg.Paths.ListFile != want {
		t.Fatalf("unexpected list file: got %q want %q", cfg.Paths.ListFile, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "urldeck"); cfg.Paths.DataDir != want {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, want)
	}
	if cfg.FetchTimeout() != 5*time.Second {
		t.Fatalf("unexpected fetch timeout: %s", cfg.FetchTimeout())
	}
	if !strings.HasPrefix(cfg.Fetch.UserAgent, "Mozilla/5.0") {
		t.Fatalf("expected browser-like user agent, got %q", cfg.Fetch.UserAgent)
	}
	if cfg.Enrich.MaxInFlight != 0 {
		t.Fatalf("expected unbounded dispatch by default, got %d", cfg.Enrich.MaxInFlight)
	}
	if cfg.List.Format != config.ListFormatPairs {
		t.Fatalf("unexpected list format: %q", cfg.List.Format)
	}
	if !cfg.Cache.Enabled {
		t.Fatal("expected cache enabled by default")
	}
	if cfg.CacheDBPath() != filepath.Join(cfg.Paths.DataDir, "icons.db") {
		t.Fatalf("unexpected cache path: %q", cfg.CacheDBPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("URLDECK_LIST_FILE", "")
	t.Setenv("URLDECK_USER_AGENT", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "urldeck.toml")

	type payload struct {
		Paths struct {
			ListFile string `toml:"list_file"`
		} `toml:"paths"`
		List struct {
			Format string `toml:"format"`
		} `toml:"list"`
		Fetch struct {
			TimeoutSeconds int    `toml:"timeout_seconds"`
			UserAgent      string `toml:"user_agent"`
		} `toml:"fetch"`
		Enrich struct {
			MaxInFlight int `toml:"max_in_flight"`
		} `toml:"enrich"`
	}
	custom := payload{}
	custom.Paths.ListFile = filepath.Join(tempDir, "links.txt")
	custom.List.Format = " Lines "
	custom.Fetch.TimeoutSeconds = 2
	custom.Fetch.UserAgent = "test-agent/1.0"
	custom.Enrich.MaxInFlight = 4

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ListFile != custom.Paths.ListFile {
		t.Fatalf("unexpected list file: %q", cfg.Paths.ListFile)
	}
	if cfg.List.Format != config.ListFormatLines {
		t.Fatalf("expected format to be normalized, got %q", cfg.List.Format)
	}
	if cfg.FetchTimeout() != 2*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.FetchTimeout())
	}
	if cfg.Fetch.UserAgent != "test-agent/1.0" {
		t.Fatalf("unexpected user agent: %q", cfg.Fetch.UserAgent)
	}
	if cfg.Enrich.MaxInFlight != 4 {
		t.Fatalf("unexpected max in flight: %d", cfg.Enrich.MaxInFlight)
	}
	if cfg.Resolver.LookupSize != 32 {
		t.Fatalf("expected default lookup size, got %d", cfg.Resolver.LookupSize)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	listPath := filepath.Join(tempDir, "env-list.txt")
	t.Setenv("URLDECK_LIST_FILE", listPath)
	t.Setenv("URLDECK_USER_AGENT", "env-agent")

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.ListFile != listPath {
		t.Fatalf("expected list file from env, got %q", cfg.Paths.ListFile)
	}
	if cfg.Fetch.UserAgent != "env-agent" {
		t.Fatalf("expected user agent from env, got %q", cfg.Fetch.UserAgent)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("URLDECK_LIST_FILE", "")
	t.Setenv("URLDECK_USER_AGENT", "")
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown list format", "[list]\nformat = \"csv\"\n", "list.format"},
		{"bad lookup scheme", "[resolver]\nlookup_service_url = \"ftp://icons.example\"\n", "lookup_service_url"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"huge placeholder", "[enrich]\nplaceholder_size = 4096\n", "placeholder_size"},
		{"unknown key", "[fetch]\nretries = 3\n", "parse config"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "urldeck.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("URLDECK_LIST_FILE", "")
	t.Setenv("URLDECK_USER_AGENT", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Resolver.LookupServiceURL != config.Default().Resolver.LookupServiceURL {
		t.Fatalf("unexpected lookup service: %q", cfg.Resolver.LookupServiceURL)
	}
}
