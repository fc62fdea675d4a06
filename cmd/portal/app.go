package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/career-portal/internal/api"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/dashboard"
	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/session"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in; run 'portal login' first")

// app wires configuration, session storage, the API client and the
// dashboard for a single command invocation.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *session.Store
	client  *api.Client
	orch    *dashboard.Orchestrator
	printer *observability.Printer
	out     io.Writer

	closers []func() error
}

// resolveConfig merges flags, environment, the optional config file and
// the built-in defaults, in that priority order.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	var flagCfg config.Config
	if cmd.Flags().Changed("api-url") {
		flagCfg.APIBaseURL = opts.apiURL
	}
	if cmd.Flags().Changed("session-file") {
		flagCfg.SessionFile = opts.sessionFile
	}
	if cmd.Flags().Changed("session-backend") {
		flagCfg.SessionBackend = opts.sessionBackend
	}
	flagCfg.Verbose = opts.verbose

	envCfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	var fileCfg config.Config
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	cfg := flagCfg.MergeWithDefaults(envCfg)
	cfg = cfg.MergeWithDefaults(fileCfg)
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.SessionBackend == config.BackendFile && cfg.SessionFile == "" {
		cfg.SessionFile = session.DefaultSessionFile()
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg.Verbose, cmd.ErrOrStderr()),
		out:     cmd.OutOrStdout(),
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}

	storage, err := a.openStorage(cmd.Context())
	if err != nil {
		return nil, err
	}

	a.store = session.New(storage, a.logger)
	if err := a.store.Init(cmd.Context()); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.client, err = api.New(cfg.APIBaseURL,
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		api.WithLogger(a.logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.orch = dashboard.New(a.store, a.client, a.logger, dashboard.WithRenderer(func(v dashboard.View) {
		a.logger.Debug("view changed",
			"mode", v.Mode.String(),
			"courses", len(v.Recommendations.Courses),
			"jobs", len(v.Recommendations.Jobs),
			"recommendations_loading", v.RecommendationsLoading,
		)
	}))
	a.closers = append(a.closers, func() error {
		a.orch.Stop()
		return nil
	})

	a.logger.Debug("client configured",
		"api_base_url", cfg.APIBaseURL,
		"session_backend", cfg.SessionBackend,
		"timeout_seconds", cfg.TimeoutSeconds,
	)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (session.Storage, error) {
	switch a.cfg.SessionBackend {
	case config.BackendRedis:
		rs, err := session.NewRedisStorage(a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to reach redis session backend: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	default:
		return session.NewFileStorage(a.cfg.SessionFile), nil
	}
}

// credential returns the signed-in credential or errNotSignedIn.
func (a *app) credential() (string, error) {
	credential, ok := a.store.Current()
	if !ok {
		return "", errNotSignedIn
	}
	return credential, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp builds the app for cmd, runs fn and closes the app afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(*app) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
