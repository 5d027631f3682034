package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"example.com/clerk-notes/internal/auth"
	"example.com/clerk-notes/internal/config"
	"example.com/clerk-notes/internal/db"
	"example.com/clerk-notes/internal/logging"
	"example.com/clerk-notes/internal/metrics"
	"example.com/clerk-notes/internal/notes"
	"example.com/clerk-notes/internal/server"
	"example.com/clerk-notes/internal/service"
)

const clerkAPITimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate cfg: %w", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(logger)

	conn, err := db.Open(ctx, db.Options{
		DatabaseURL:     cfg.DatabaseURL,
		RequireTLS:      cfg.IsProduction(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnectAttempts: cfg.ConnectAttempts,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("close db", logging.Err(err))
		}
	}()

	verifier, err := newVerifier(cfg.Clerk)
	if err != nil {
		return err
	}

	m := metrics.New()
	repo := notes.NewRepository(db.NewGateway(conn.SQL))
	handlers := notes.NewHandlers(notes.Deps{
		Service:        service.New(repo, logger),
		Verifier:       verifier,
		PublishableKey: cfg.Clerk.PublishableKey,
		Logger:         logger,
		Recorder:       m,
	})

	srv, err := server.New(server.Options{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.RouterDeps{
			Logger:  logger,
			Metrics: m,
			Ping:    conn.SQL.PingContext,
			Notes:   handlers.Routes(cfg.HTTPBasePath),
		}),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	logger.Info("notes api starting",
		slog.String("env", cfg.Env),
		slog.String("base_path", cfg.HTTPBasePath),
	)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}

// newVerifier picks offline PEM verification when the instance key is
// configured. Otherwise the secret key drives either cached-JWKS verification
// or, with CLERK_VERIFY_SESSIONS, a Backend API call per request.
func newVerifier(cfg config.ClerkConfig) (auth.Verifier, error) {
	hc := &http.Client{Timeout: clerkAPITimeout}
	switch {
	case cfg.JWTKey != "":
		v, err := auth.NewJWTVerifier(cfg.JWTKey, cfg.AuthorizedParties)
		if err != nil {
			return nil, fmt.Errorf("init jwt verifier: %w", err)
		}
		return v, nil
	case cfg.VerifySessions:
		return auth.NewSessionVerifier(cfg.APIURL, cfg.SecretKey, hc), nil
	default:
		return auth.NewClerkVerifier(cfg.APIURL, cfg.SecretKey, cfg.AuthorizedParties, hc), nil
	}
}
