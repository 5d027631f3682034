package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"example.com/clerk-notes/internal/db"
)

const noteColumns = `id, user_id, title, COALESCE(content, ''), created_at, updated_at`

// Repository runs ownership-scoped statements through the gateway. Every
// statement that touches an existing row filters on both id and user_id.
type Repository struct {
	gw *db.Gateway
}

func NewRepository(gw *db.Gateway) *Repository {
	return &Repository{gw: gw}
}

func (r *Repository) Create(ctx context.Context, userID, title, content string) (Note, error) {
	var n Note
	err := r.gw.WithConnection(ctx, func(ctx context.Context, conn db.Conn) error {
		if err := r.gw.EnsureSchema(ctx, conn); err != nil {
			return err
		}
		return scanNote(conn.QueryRowContext(ctx, `
			INSERT INTO notes (user_id, title, content)
			VALUES ($1, $2, $3)
			RETURNING `+noteColumns,
			userID, title, content,
		), &n)
	})
	if err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

// ListByOwner returns the owner's notes, newest first. Notes created in the
// same instant come back in reverse insertion order.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]Note, error) {
	var out []Note
	err := r.gw.WithConnection(ctx, func(ctx context.Context, conn db.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT `+noteColumns+`
			FROM notes
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanNotes(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id int64, userID, title, content string) (Note, error) {
	var n Note
	err := r.gw.WithConnection(ctx, func(ctx context.Context, conn db.Conn) error {
		if err := checkOwned(ctx, conn, id, userID); err != nil {
			return err
		}
		// The row may be gone by now; the scoped WHERE keeps that a not-found.
		err := scanNote(conn.QueryRowContext(ctx, `
			UPDATE notes
			SET title = $1, content = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $3 AND user_id = $4
			RETURNING `+noteColumns,
			title, content, id, userID,
		), &n)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return Note{}, fmt.Errorf("update note %d: %w", id, err)
	}
	return n, nil
}

func (r *Repository) Delete(ctx context.Context, id int64, userID string) error {
	err := r.gw.WithConnection(ctx, func(ctx context.Context, conn db.Conn) error {
		if err := checkOwned(ctx, conn, id, userID); err != nil {
			return err
		}
		var deleted int64
		err := conn.QueryRowContext(ctx, `
			DELETE FROM notes
			WHERE id = $1 AND user_id = $2
			RETURNING id
		`, id, userID).Scan(&deleted)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func checkOwned(ctx context.Context, conn db.Conn, id int64, userID string) error {
	var found int64
	err := conn.QueryRowContext(ctx, `
		SELECT id FROM notes
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func scanNote(row *sql.Row, n *Note) error {
	return row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 32)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
