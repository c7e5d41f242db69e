// Package config loads the ytcipher TOML configuration.
//
// Values are layered: built-in defaults, then the config file, then
// YTCIPHER_* environment variables. Command line flags are applied last by
// the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ytget/ytcipher/internal/logger"
	"github.com/ytget/ytcipher/youtube/cipher"
	"github.com/ytget/ytcipher/youtube/player"
)

const appName = "ytcipher"

// Telemetry exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds all application configuration.
type Config struct {
	HTTP      HTTPConfig       `toml:"http"`
	Cipher    CipherConfig     `toml:"cipher"`
	Log       logger.LogConfig `toml:"log"`
	Telemetry TelemetryConfig  `toml:"telemetry"`
}

// HTTPConfig configures the script fetcher.
type HTTPConfig struct {
	Timeout   time.Duration `toml:"timeout"`
	Retries   int           `toml:"retries"`
	UserAgent string        `toml:"user_agent"`
	Proxy     string        `toml:"proxy"`
}

// CipherConfig configures cipher loading.
type CipherConfig struct {
	ScriptHost string `toml:"script_host"`
	LoadPolicy string `toml:"load_policy"` // "per-key" or "global"
	CacheDir   string `toml:"cache_dir"`   // empty disables the persistent store
	Store      string `toml:"store"`       // "file" or "sqlite"
	Verify     string `toml:"verify"`      // "off", "otto" or "goja"
}

// TelemetryConfig selects the metric and trace exporters.
type TelemetryConfig struct {
	Metrics string `toml:"metrics"` // "none", "stdout" or "otlp"
	Traces  string `toml:"traces"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
			Retries: 1,
		},
		Cipher: CipherConfig{
			ScriptHost: player.DefaultScriptHost,
			LoadPolicy: player.PolicyPerKey,
			Store:      player.StoreFile,
			Verify:     "off",
		},
		Log: *logger.DefaultLogConfig(),
		Telemetry: TelemetryConfig{
			Metrics: ExporterNone,
			Traces:  ExporterNone,
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the default config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultCacheDir returns the XDG-compliant directory for the cipher store.
func DefaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the config file at path, or the default path when path is
// empty, and applies environment overrides. A missing default file yields
// the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvironment overrides c with YTCIPHER_* variables.
func (c *Config) ApplyEnvironment() error {
	strs := map[string]*string{
		"YTCIPHER_USER_AGENT":  &c.HTTP.UserAgent,
		"YTCIPHER_PROXY":       &c.HTTP.Proxy,
		"YTCIPHER_SCRIPT_HOST": &c.Cipher.ScriptHost,
		"YTCIPHER_LOAD_POLICY": &c.Cipher.LoadPolicy,
		"YTCIPHER_CACHE_DIR":   &c.Cipher.CacheDir,
		"YTCIPHER_STORE":       &c.Cipher.Store,
		"YTCIPHER_VERIFY":      &c.Cipher.Verify,
		"YTCIPHER_METRICS":     &c.Telemetry.Metrics,
		"YTCIPHER_TRACES":      &c.Telemetry.Traces,
	}
	for env, dst := range strs {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}

	if v := os.Getenv("YTCIPHER_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("YTCIPHER_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv("YTCIPHER_HTTP_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("YTCIPHER_HTTP_RETRIES: %w", err)
		}
		c.HTTP.Retries = n
	}

	logger.ApplyEnvironment(&c.Log)
	return nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative")
	}
	if c.Cipher.ScriptHost != "" && !strings.HasPrefix(c.Cipher.ScriptHost, "http://") && !strings.HasPrefix(c.Cipher.ScriptHost, "https://") {
		return fmt.Errorf("cipher.script_host %q must be an http(s) URL", c.Cipher.ScriptHost)
	}
	if _, err := player.ParsePolicy(c.Cipher.LoadPolicy); err != nil {
		return fmt.Errorf("cipher.load_policy: %w", err)
	}
	if !player.ValidStore(c.Cipher.Store) {
		return fmt.Errorf("cipher.store: unknown store %q (valid: file, sqlite)", c.Cipher.Store)
	}
	if _, err := cipher.NewVerifier(c.Cipher.Verify); err != nil {
		return fmt.Errorf("cipher.verify: %w", err)
	}
	for name, v := range map[string]string{"telemetry.metrics": c.Telemetry.Metrics, "telemetry.traces": c.Telemetry.Traces} {
		switch strings.ToLower(v) {
		case "", ExporterNone, ExporterStdout, ExporterOTLP:
		default:
			return fmt.Errorf("%s: unsupported exporter %q (valid: none, stdout, otlp)", name, v)
		}
	}
	if err := c.Log.ValidateConfig(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// ExpandCacheDir resolves ~ in the cache directory path. An empty cache_dir
// stays empty.
func (c *Config) ExpandCacheDir() (string, error) {
	dir := c.Cipher.CacheDir
	if dir == "" {
		return "", nil
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
	}
	return filepath.Abs(dir)
}
