package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/api"
	"github.com/Togather-Foundation/eventreg/internal/audit"
	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/email"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
	"github.com/Togather-Foundation/eventreg/internal/storage/memory"
	"github.com/Togather-Foundation/eventreg/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	storeMetricsInterval = 15 * time.Second
	shutdownTimeout      = 10 * time.Second
)

type serveOptions struct {
	host string
	port int
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Select the email transport (log, smtp or resend)
- Keep users, events and registrations in process memory
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 3000)")
	return cmd
}

func runServer(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Str("version", Version).Msg("starting eventreg server")
	if cfg.Auth.InsecureDefaultSecret {
		logger.Warn().Msg("JWT_SECRET is not set; using the public development secret")
	}

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	collector := metrics.NewStoreCollector(app.store)
	collectorCtx, collectorCancel := context.WithCancel(ctx)
	go collector.Start(collectorCtx, storeMetricsInterval)
	defer collectorCancel()
	defer collector.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.handler,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return gracefulShutdown(server, logger)
}

func loadConfig(root *rootOptions) (config.Config, error) {
	cfg, err := config.LoadFile(root.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if root.logLevel != "" {
		cfg.Logging.Level = root.logLevel
	}
	if root.logFormat != "" {
		cfg.Logging.Format = root.logFormat
	}
	return cfg, nil
}

// application is the wired object graph behind the HTTP handler.
type application struct {
	handler http.Handler
	store   *memory.Store
	tokens  *auth.JWTManager
}

func newApp(cfg config.Config, logger zerolog.Logger) (*application, error) {
	store := memory.New()
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	transport, err := email.NewTransport(cfg.Email, logger)
	if err != nil {
		return nil, fmt.Errorf("email transport: %w", err)
	}
	mailer, err := email.NewService(cfg.Email, transport, logger)
	if err != nil {
		return nil, fmt.Errorf("email service: %w", err)
	}
	logger.Info().Str("transport", transport.Name()).Msg("email notifications configured")

	auditLogger := audit.NewLogger(logger)
	userService := users.NewService(store, tokens, mailer, auditLogger, logger)
	eventService := events.NewService(store, mailer, auditLogger, logger)

	handler := api.NewRouter(api.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Users:     userService,
		Events:    eventService,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})
	return &application{handler: handler, store: store, tokens: tokens}, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
