package notes

import "errors"

var (
	// ErrNotFound covers both a missing note and a note owned by someone
	// else; callers cannot tell the two apart.
	ErrNotFound      = errors.New("note not found or access denied")
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidID     = errors.New("valid note id is required")
	ErrUserMismatch  = errors.New("user id mismatch")
)
