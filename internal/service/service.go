package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"example.com/clerk-notes/internal/notes"
	"example.com/clerk-notes/internal/stringsx"
)

// NoteRepo is a dependency that must be stubbed in unit tests.
type NoteRepo interface {
	Create(ctx context.Context, userID, title, content string) (notes.Note, error)
	ListByOwner(ctx context.Context, userID string) ([]notes.Note, error)
	Update(ctx context.Context, id int64, userID, title, content string) (notes.Note, error)
	Delete(ctx context.Context, id int64, userID string) error
}

// Service validates note input and applies the caller's identity before
// anything reaches storage. userID is always the verified token subject.
type Service struct {
	repo   NoteRepo
	logger *slog.Logger
}

func New(repo NoteRepo, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create stores a note owned by userID. A userId in the body is optional;
// when sent, even empty, it must match userID or ErrUserMismatch is returned.
func (s *Service) Create(ctx context.Context, userID string, req notes.CreateNoteRequest) (notes.Note, error) {
	if stringsx.IsEmpty(req.Title) {
		return notes.Note{}, notes.ErrTitleRequired
	}
	if req.UserID != nil && *req.UserID != userID {
		s.logger.WarnContext(ctx, "create note with foreign user id",
			slog.String("user_id", userID),
			slog.String("claimed_user_id", *req.UserID),
		)
		return notes.Note{}, notes.ErrUserMismatch
	}

	n, err := s.repo.Create(ctx, userID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Content))
	if err != nil {
		return notes.Note{}, fmt.Errorf("service create note: %w", err)
	}

	s.logger.InfoContext(ctx, "note created", slog.String("user_id", userID), slog.Int64("note_id", n.ID))
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]notes.Note, error) {
	out, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service list notes: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, userID string, req notes.UpdateNoteRequest) (notes.Note, error) {
	if !req.ID.Valid() {
		return notes.Note{}, notes.ErrInvalidID
	}
	if stringsx.IsEmpty(req.Title) {
		return notes.Note{}, notes.ErrTitleRequired
	}

	n, err := s.repo.Update(ctx, int64(req.ID), userID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Content))
	if err != nil {
		return notes.Note{}, fmt.Errorf("service update note: %w", err)
	}

	s.logger.InfoContext(ctx, "note updated", slog.String("user_id", userID), slog.Int64("note_id", n.ID))
	return n, nil
}

// Delete removes the note and returns its id. Any integer id is accepted;
// one that cannot exist answers ErrNotFound without touching storage.
func (s *Service) Delete(ctx context.Context, userID string, id notes.NoteID) (int64, error) {
	if !id.WellFormed() {
		return 0, notes.ErrInvalidID
	}
	if !id.Valid() {
		return 0, fmt.Errorf("service delete note %d: %w", id, notes.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, int64(id), userID); err != nil {
		return 0, fmt.Errorf("service delete note: %w", err)
	}

	s.logger.InfoContext(ctx, "note deleted", slog.String("user_id", userID), slog.Int64("note_id", int64(id)))
	return int64(id), nil
}
