package notes

import (
	"bytes"
	"math"
	"strconv"
	"time"
)

type Note struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoteRequest carries an optional userId for older clients. Ownership
// always comes from the verified token; a userId that disagrees is refused.
type CreateNoteRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	UserID  *string `json:"userId,omitempty"`
}

type UpdateNoteRequest struct {
	ID      NoteID `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type DeleteNoteRequest struct {
	ID NoteID `json:"id"`
}

// NoteID accepts a JSON number or a numeric string. Integral floats such as
// 5.0 are taken as integers. Anything else decodes to zero, which no
// operation accepts.
type NoteID int64

func (id *NoteID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = bytes.TrimSpace(b[1 : len(b)-1])
	}
	*id = NoteID(parseID(string(b)))
	return nil
}

func parseID(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// WellFormed reports whether the request carried an integer id.
func (id NoteID) WellFormed() bool { return id != 0 }

// Valid reports whether id could name a stored note.
func (id NoteID) Valid() bool { return id > 0 }

type NoteResponse struct {
	Success bool `json:"success"`
	Note    Note `json:"note"`
}

type ListNotesResponse struct {
	Success bool   `json:"success"`
	Notes   []Note `json:"notes"`
	Count   int    `json:"count"`
}

type DeleteNoteResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	DeletedID int64  `json:"deletedId"`
}

type ConfigResponse struct {
	Success        bool   `json:"success"`
	PublishableKey string `json:"publishableKey"`
}
