package db

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"example.com/clerk-notes/internal/logging"
)

type DB struct {
	SQL *sql.DB
}

type Options struct {
	DatabaseURL string
	// RequireTLS encrypts the connection without verifying the server
	// certificate. When false TLS is disabled.
	RequireTLS bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	ConnectAttempts uint
	Logger          *slog.Logger
}

func Open(ctx context.Context, opts Options) (*DB, error) {
	connCfg, err := connConfig(opts.DatabaseURL, opts.RequireTLS)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	err = retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			logger.WarnContext(ctx, "failed ping to database",
				logging.Err(err),
				slog.Uint64("attempt", uint64(attempt)),
			)
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping to database: %w", err)
	}

	return &DB{SQL: db}, nil
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

// connConfig parses the connection string and applies the TLS policy,
// overriding any sslmode given in the URL.
func connConfig(databaseURL string, requireTLS bool) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.Fallbacks = nil
	if requireTLS {
		cfg.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec
		}
	} else {
		cfg.TLSConfig = nil
	}
	return cfg, nil
}
