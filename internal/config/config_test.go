package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ytget/ytcipher/youtube/player"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cipher.LoadPolicy != player.PolicyPerKey {
		t.Errorf("default load_policy = %q, want %q", cfg.Cipher.LoadPolicy, player.PolicyPerKey)
	}
	if cfg.Cipher.ScriptHost != "https://s.ytimg.com" {
		t.Errorf("default script_host = %q", cfg.Cipher.ScriptHost)
	}
	if cfg.HTTP.Timeout != 30*time.Second || cfg.HTTP.Retries != 1 {
		t.Errorf("default http = %+v", cfg.HTTP)
	}
	if cfg.Cipher.CacheDir != "" {
		t.Error("file store should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"global policy", func(c *Config) { c.Cipher.LoadPolicy = "global" }, false},
		{"invalid policy", func(c *Config) { c.Cipher.LoadPolicy = "rwlock" }, true},
		{"sqlite store", func(c *Config) { c.Cipher.Store = "sqlite" }, false},
		{"invalid store", func(c *Config) { c.Cipher.Store = "redis" }, true},
		{"goja verify", func(c *Config) { c.Cipher.Verify = "goja" }, false},
		{"invalid verify", func(c *Config) { c.Cipher.Verify = "node" }, true},
		{"relative script host", func(c *Config) { c.Cipher.ScriptHost = "s.ytimg.com" }, true},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, true},
		{"negative retries", func(c *Config) { c.HTTP.Retries = -1 }, true},
		{"stdout metrics", func(c *Config) { c.Telemetry.Metrics = "stdout" }, false},
		{"otlp traces", func(c *Config) { c.Telemetry.Traces = "otlp" }, false},
		{"jaeger traces", func(c *Config) { c.Telemetry.Traces = "jaeger" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	content := `
[http]
timeout = "5s"
retries = 2
proxy = "http://127.0.0.1:3128"

[cipher]
script_host = "https://www.youtube.com"
load_policy = "global"
cache_dir = "/tmp/ytcipher-cache"
verify = "otto"

[log]
level = "debug"
format = "json"

[log.components]
client = true

[telemetry]
metrics = "stdout"
`
	dir := filepath.Join(tmpDir, "ytcipher")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.Retries != 2 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Cipher.LoadPolicy != "global" || cfg.Cipher.Verify != "otto" {
		t.Errorf("cipher = %+v", cfg.Cipher)
	}
	if cfg.Cipher.ScriptHost != "https://www.youtube.com" {
		t.Errorf("script_host = %q", cfg.Cipher.ScriptHost)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.Log.Components["client"] || !cfg.Log.Components["player"] {
		t.Errorf("log components = %v, want defaults merged with client", cfg.Log.Components)
	}
	if cfg.Telemetry.Metrics != "stdout" || cfg.Telemetry.Traces != "none" {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Cipher.LoadPolicy != player.PolicyPerKey {
		t.Errorf("missing file should return defaults, got load_policy = %q", cfg.Cipher.LoadPolicy)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() should fail for a missing explicit file")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cipher\nverify = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on malformed TOML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("YTCIPHER_LOAD_POLICY", "global")
	t.Setenv("YTCIPHER_VERIFY", "goja")
	t.Setenv("YTCIPHER_HTTP_TIMEOUT", "750ms")
	t.Setenv("YTCIPHER_HTTP_RETRIES", "4")
	t.Setenv("YTCIPHER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Cipher.LoadPolicy != "global" || cfg.Cipher.Verify != "goja" {
		t.Errorf("cipher = %+v", cfg.Cipher)
	}
	if cfg.HTTP.Timeout != 750*time.Millisecond || cfg.HTTP.Retries != 4 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}

	t.Setenv("YTCIPHER_HTTP_RETRIES", "many")
	if _, err := Load(""); err == nil {
		t.Error("Load() should reject a non-numeric YTCIPHER_HTTP_RETRIES")
	}
}

func TestExpandCacheDir(t *testing.T) {
	cfg := Default()
	if dir, err := cfg.ExpandCacheDir(); err != nil || dir != "" {
		t.Errorf("empty cache_dir = %q, %v", dir, err)
	}

	cfg.Cipher.CacheDir = "/tmp/ytcipher-cache"
	dir, err := cfg.ExpandCacheDir()
	if err != nil {
		t.Fatalf("ExpandCacheDir() error: %v", err)
	}
	if dir != "/tmp/ytcipher-cache" {
		t.Errorf("got %q, want /tmp/ytcipher-cache", dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg.Cipher.CacheDir = "~/ciphers"
	if dir, _ := cfg.ExpandCacheDir(); dir != filepath.Join(home, "ciphers") {
		t.Errorf("got %q, want %q", dir, filepath.Join(home, "ciphers"))
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/var/cache/test")
	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/var/cache/test/ytcipher" {
		t.Errorf("DefaultCacheDir() = %q", dir)
	}
}
