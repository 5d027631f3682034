// Package client talks to the notes HTTP API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/clerk-notes/internal/httpx"
	"example.com/clerk-notes/internal/notes"
	"example.com/clerk-notes/internal/stringsx"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the API. Message is the envelope's
// "error" field; Detail its optional "message".
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("notes api: %d %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("notes api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for the endpoints under baseURL, e.g.
// "https://example.netlify.app/.netlify/functions". token is the Clerk
// session token sent as the bearer credential.
func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

// Config fetches the publishable key. It needs no token.
func (c *Client) Config(ctx context.Context) (string, error) {
	var resp notes.ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/get-clerk-config", nil, false, &resp); err != nil {
		return "", err
	}
	return resp.PublishableKey, nil
}

func (c *Client) List(ctx context.Context) ([]notes.Note, error) {
	var resp notes.ListNotesResponse
	if err := c.do(ctx, http.MethodGet, "/read-notes", nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.Notes == nil {
		resp.Notes = []notes.Note{}
	}
	return resp.Notes, nil
}

func (c *Client) Create(ctx context.Context, title, content string) (notes.Note, error) {
	if stringsx.IsEmpty(title) {
		return notes.Note{}, notes.ErrTitleRequired
	}

	var resp notes.NoteResponse
	req := notes.CreateNoteRequest{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, "/create-note", req, true, &resp); err != nil {
		return notes.Note{}, err
	}
	return resp.Note, nil
}

func (c *Client) Update(ctx context.Context, id int64, title, content string) (notes.Note, error) {
	if id <= 0 {
		return notes.Note{}, notes.ErrInvalidID
	}
	if stringsx.IsEmpty(title) {
		return notes.Note{}, notes.ErrTitleRequired
	}

	var resp notes.NoteResponse
	req := notes.UpdateNoteRequest{ID: notes.NoteID(id), Title: title, Content: content}
	if err := c.do(ctx, http.MethodPut, "/update-note", req, true, &resp); err != nil {
		return notes.Note{}, err
	}
	return resp.Note, nil
}

// Delete removes the note and returns the id the server confirmed.
func (c *Client) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, notes.ErrInvalidID
	}

	var resp notes.DeleteNoteResponse
	if err := c.do(ctx, http.MethodDelete, "/delete-note", notes.DeleteNoteRequest{ID: notes.NoteID(id)}, true, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, withToken bool, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb httpx.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Message, apiErr.Detail = eb.Error, eb.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
