package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
)

// Conn is the subset of database/sql used by repositories.
// *sql.Conn, *sql.DB and *sql.Tx all satisfy it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id SERIAL PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC)`,
}

// Gateway hands out scoped connections from a shared pool. It is safe for
// concurrent use.
type Gateway struct {
	db          *sql.DB
	schemaMu    sync.Mutex
	schemaReady atomic.Bool
}

func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// WithConnection runs fn on a connection taken from the pool. The connection
// goes back to the pool when fn returns or panics.
func (g *Gateway) WithConnection(ctx context.Context, fn func(ctx context.Context, conn Conn) error) (err error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release connection: %w", cerr)
		}
	}()

	return fn(ctx, conn)
}

// EnsureSchema creates the notes table and its indexes if they are missing.
// After the first success it does nothing for the rest of the process.
// Concurrent first calls are serialized: Postgres can fail two parallel
// CREATE TABLE IF NOT EXISTS on the pg_type unique index.
func (g *Gateway) EnsureSchema(ctx context.Context, conn Conn) error {
	if g.schemaReady.Load() {
		return nil
	}

	g.schemaMu.Lock()
	defer g.schemaMu.Unlock()
	if g.schemaReady.Load() {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	g.schemaReady.Store(true)
	return nil
}
