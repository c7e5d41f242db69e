package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/ytcipher"
	"github.com/ytget/ytcipher/client"
	"github.com/ytget/ytcipher/internal/config"
	"github.com/ytget/ytcipher/internal/logger"
	"github.com/ytget/ytcipher/internal/telemetry"
	"github.com/ytget/ytcipher/youtube/cipher"
	"github.com/ytget/ytcipher/youtube/player"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// app holds state shared by subcommands once the root pre-run has finished.
type app struct {
	// flags
	configPath string
	script     string
	scriptHost string
	policy     string
	verify     string
	cacheDir   string
	storeKind  string
	timeout    time.Duration
	retries    int
	userAgent  string
	proxy      string
	metrics    string
	traces     string
	debug      bool

	cfg       *config.Config
	verifier  cipher.Verifier
	store     player.Store
	resolver  *ytcipher.Resolver
	telemetry *telemetry.Telemetry
	log       *logger.ComponentLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ytcipher",
		Short: "Decode YouTube stream signatures",
		Long: `ytcipher recovers the signature cipher from a YouTube player script and
uses it to decode scrambled signatures and resolve playback and manifest URLs.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ytcipher/config.toml)")
	pf.StringVarP(&a.script, "script", "s", "", "Player script URL or path, e.g. /s/player/abc/base.js")
	pf.StringVar(&a.scriptHost, "script-host", "", "Host for path-only script identities")
	pf.StringVar(&a.policy, "policy", "", "Load policy: per-key or global")
	pf.StringVar(&a.verify, "verify", "", "Verify recovered ciphers with a JS engine: off, otto or goja")
	pf.StringVar(&a.cacheDir, "cache-dir", "", "Directory for the on-disk cipher store")
	pf.StringVar(&a.storeKind, "store", "", "On-disk store backend: file or sqlite")
	pf.DurationVar(&a.timeout, "http-timeout", 0, "HTTP timeout (e.g. 30s, 1m)")
	pf.IntVar(&a.retries, "retries", 0, "Total HTTP attempts for transient errors")
	pf.StringVar(&a.userAgent, "ua", "", "Override User-Agent header")
	pf.StringVar(&a.proxy, "proxy", "", "Proxy URL (http/https/socks)")
	pf.StringVar(&a.metrics, "metrics", "", "Metric exporter: none, stdout or otlp")
	pf.StringVar(&a.traces, "traces", "", "Trace exporter: none, stdout or otlp")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newDecodeCmd(a),
		newPlaybackCmd(a),
		newManifestCmd(a),
		newOpsCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup merges configuration (defaults < config file < env < flags) and
// builds the resolver.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("script-host") {
		cfg.Cipher.ScriptHost = a.scriptHost
	}
	if flags.Changed("policy") {
		cfg.Cipher.LoadPolicy = a.policy
	}
	if flags.Changed("verify") {
		cfg.Cipher.Verify = a.verify
	}
	if flags.Changed("cache-dir") {
		cfg.Cipher.CacheDir = a.cacheDir
	}
	if flags.Changed("store") {
		cfg.Cipher.Store = a.storeKind
	}
	if flags.Changed("http-timeout") {
		cfg.HTTP.Timeout = a.timeout
	}
	if flags.Changed("retries") {
		cfg.HTTP.Retries = a.retries
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = a.userAgent
	}
	if flags.Changed("proxy") {
		cfg.HTTP.Proxy = a.proxy
	}
	if flags.Changed("metrics") {
		cfg.Telemetry.Metrics = a.metrics
	}
	if flags.Changed("traces") {
		cfg.Telemetry.Traces = a.traces
	}
	if a.debug {
		cfg.Log.Level = "DEBUG"
	}

	// Re-validate after CLI overrides.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	lg, err := logger.CreateLoggerFromConfig(&cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger.SetGlobalLogger(lg)
	a.log = lg.WithComponent(logger.ComponentApp)

	tel, err := telemetry.Setup(cmd.Context(), telemetry.Config{
		ServiceName: "ytcipher",
		Version:     Version,
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		Writer:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	a.telemetry = tel

	policy, err := player.ParsePolicy(cfg.Cipher.LoadPolicy)
	if err != nil {
		return err
	}
	a.verifier, err = cipher.NewVerifier(cfg.Cipher.Verify)
	if err != nil {
		return err
	}

	c := client.NewWith(client.Config{
		Timeout:   cfg.HTTP.Timeout,
		Retries:   cfg.HTTP.Retries,
		UserAgent: cfg.HTTP.UserAgent,
		ProxyURL:  cfg.HTTP.Proxy,
	})
	a.resolver = ytcipher.NewWithFetcher(c).
		WithLoadPolicy(policy).
		WithScriptHost(cfg.Cipher.ScriptHost).
		WithVerifier(a.verifier).
		WithTelemetry(tel.Meter(), tel.Tracer())

	dir, err := cfg.ExpandCacheDir()
	if err != nil {
		return err
	}
	if dir != "" {
		store, err := player.OpenStore(cfg.Cipher.Store, dir)
		if err != nil {
			return fmt.Errorf("opening cipher store: %w", err)
		}
		a.store = store
		a.resolver.WithStore(store)
		a.log.Debug("Using cipher store", map[string]interface{}{"dir": dir, "store": cfg.Cipher.Store})
	}
	return nil
}

// teardown closes the store and flushes telemetry exporters.
func (a *app) teardown(*cobra.Command, []string) error {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("Failed to close cipher store", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.telemetry == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.telemetry.Shutdown(ctx)
}

// requireScript returns the --script value or an error naming the command.
func (a *app) requireScript(cmd *cobra.Command) (string, error) {
	if a.script == "" {
		return "", fmt.Errorf("%s: --script is required", cmd.Name())
	}
	return a.script, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading for version.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ytcipher %s\n", Version)
		},
	}
}
