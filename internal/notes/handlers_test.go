package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/clerk-notes/internal/auth"
)

const base = "/.netlify/functions"

type stubService struct {
	createFn func(context.Context, string, CreateNoteRequest) (Note, error)
	listFn   func(context.Context, string) ([]Note, error)
	updateFn func(context.Context, string, UpdateNoteRequest) (Note, error)
	deleteFn func(context.Context, string, NoteID) (int64, error)
}

func (s stubService) Create(ctx context.Context, userID string, req CreateNoteRequest) (Note, error) {
	return s.createFn(ctx, userID, req)
}
func (s stubService) List(ctx context.Context, userID string) ([]Note, error) {
	return s.listFn(ctx, userID)
}
func (s stubService) Update(ctx context.Context, userID string, req UpdateNoteRequest) (Note, error) {
	return s.updateFn(ctx, userID, req)
}
func (s stubService) Delete(ctx context.Context, userID string, id NoteID) (int64, error) {
	return s.deleteFn(ctx, userID, id)
}

// stubVerifier accepts "good-token" as user_a.
type stubVerifier struct{ calls int }

func (v *stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	v.calls++
	if token == "good-token" {
		return auth.Identity{UserID: "user_a"}, nil
	}
	return auth.Identity{}, auth.ErrRejected
}

type countingRecorder struct{ ops map[string]int }

func (c *countingRecorder) NoteOperation(op, outcome string) { c.ops[op+"/"+outcome]++ }
func (c *countingRecorder) TokenVerification(bool)          {}

func newTestRoutes(svc Service, v auth.Verifier) http.Handler {
	return NewHandlers(Deps{Service: svc, Verifier: v, PublishableKey: "pk_test_123"}).Routes(base)
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, base+path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	msg, _ := body["error"].(string)
	return msg
}

func TestHandlers_PreflightAndMethodGuard(t *testing.T) {
	v := &stubVerifier{}
	h := newTestRoutes(stubService{}, v)

	routes := map[string]string{
		"/create-note":      http.MethodPost,
		"/read-notes":       http.MethodGet,
		"/update-note":      http.MethodPut,
		"/delete-note":      http.MethodDelete,
		"/get-clerk-config": http.MethodGet,
	}
	for path, method := range routes {
		rr := do(t, h, http.MethodOptions, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.Empty(t, rr.Body.String(), path)
		require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), path)
		require.Equal(t, method+", OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"), path)

		rr = do(t, h, http.MethodPatch, path, "good-token", "")
		require.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)
		require.Equal(t, "Method not allowed", errorOf(t, rr))
	}
	require.Zero(t, v.calls)
}

func TestHandlers_Unauthorized(t *testing.T) {
	v := &stubVerifier{}
	h := newTestRoutes(stubService{}, v)

	rr := do(t, h, http.MethodGet, "/read-notes", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Authorization header required", errorOf(t, rr))
	require.Zero(t, v.calls)

	rr = do(t, h, http.MethodPost, "/create-note", "forged", `{"title":"t"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid token", errorOf(t, rr))
	require.Equal(t, 1, v.calls)
}

func TestHandlers_Create(t *testing.T) {
	ts := time.Unix(1, 0).UTC()
	var gotUser string
	h := newTestRoutes(stubService{
		createFn: func(_ context.Context, userID string, req CreateNoteRequest) (Note, error) {
			gotUser = userID
			switch {
			case req.Title == "":
				return Note{}, ErrTitleRequired
			case req.UserID != nil && *req.UserID != userID:
				return Note{}, ErrUserMismatch
			}
			return Note{ID: 1, UserID: userID, Title: req.Title, CreatedAt: ts, UpdatedAt: ts}, nil
		},
	}, &stubVerifier{})

	// invalid json
	rr := do(t, h, http.MethodPost, "/create-note", "good-token", "{")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid JSON body", errorOf(t, rr))

	// blank title
	rr = do(t, h, http.MethodPost, "/create-note", "good-token", `{"title":"","content":"x"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Title is required", errorOf(t, rr))

	// forged user id
	rr = do(t, h, http.MethodPost, "/create-note", "good-token", `{"title":"t","userId":"user_b"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "User ID mismatch", errorOf(t, rr))

	// success
	rr = do(t, h, http.MethodPost, "/create-note", "good-token", `{"title":"t","content":"c","userId":"user_a"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp NoteResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.Equal(t, int64(1), resp.Note.ID)
	require.Equal(t, "user_a", resp.Note.UserID)
	require.Equal(t, "user_a", gotUser)
}

func TestHandlers_List(t *testing.T) {
	// empty list is an array, not null
	{
		h := newTestRoutes(stubService{
			listFn: func(context.Context, string) ([]Note, error) { return nil, nil },
		}, &stubVerifier{})
		rr := do(t, h, http.MethodGet, "/read-notes", "good-token", "")
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"success":true,"notes":[],"count":0}`, rr.Body.String())
	}

	// items and count
	{
		ts := time.Unix(2, 0).UTC()
		h := newTestRoutes(stubService{
			listFn: func(_ context.Context, userID string) ([]Note, error) {
				require.Equal(t, "user_a", userID)
				return []Note{{ID: 2, CreatedAt: ts}, {ID: 1, CreatedAt: ts}}, nil
			},
		}, &stubVerifier{})
		rr := do(t, h, http.MethodGet, "/read-notes", "good-token", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp ListNotesResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Equal(t, 2, resp.Count)
		require.Equal(t, int64(2), resp.Notes[0].ID)
	}

	// internal error
	{
		h := newTestRoutes(stubService{
			listFn: func(context.Context, string) ([]Note, error) { return nil, errors.New("db is down") },
		}, &stubVerifier{})
		rr := do(t, h, http.MethodGet, "/read-notes", "good-token", "")
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.JSONEq(t, `{"error":"Internal server error","message":"db is down"}`, rr.Body.String())
	}
}

func TestHandlers_Update(t *testing.T) {
	svc := stubService{
		updateFn: func(_ context.Context, userID string, req UpdateNoteRequest) (Note, error) {
			switch {
			case !req.ID.Valid():
				return Note{}, ErrInvalidID
			case req.ID != 1:
				return Note{}, ErrNotFound
			}
			return Note{ID: int64(req.ID), UserID: userID, Title: req.Title}, nil
		},
	}
	h := newTestRoutes(svc, &stubVerifier{})

	rr := do(t, h, http.MethodPut, "/update-note", "good-token", `{"id":"abc","title":"t"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Valid note ID is required", errorOf(t, rr))

	rr = do(t, h, http.MethodPut, "/update-note", "good-token", `{"id":2,"title":"t"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "Note not found or access denied", errorOf(t, rr))

	rr = do(t, h, http.MethodPut, "/update-note", "good-token", `{"id":"1","title":"t2"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp NoteResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "t2", resp.Note.Title)
}

func TestHandlers_Delete(t *testing.T) {
	rec := &countingRecorder{ops: map[string]int{}}
	h := NewHandlers(Deps{
		Service: stubService{
			deleteFn: func(_ context.Context, _ string, id NoteID) (int64, error) {
				switch {
				case !id.WellFormed():
					return 0, ErrInvalidID
				case id != 9:
					return 0, ErrNotFound
				}
				return int64(id), nil
			},
		},
		Verifier: &stubVerifier{},
		Recorder: rec,
	}).Routes(base)

	rr := do(t, h, http.MethodDelete, "/delete-note", "good-token", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodDelete, "/delete-note", "good-token", `{"id":8}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/delete-note", "good-token", `{"id":-3}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/delete-note", "good-token", `{"id":9.0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true,"message":"Note deleted successfully","deletedId":9}`, rr.Body.String())

	require.Equal(t, 1, rec.ops["delete/ok"])
	require.Equal(t, 2, rec.ops["delete/not_found"])
	require.Equal(t, 1, rec.ops["delete/bad_request"])
}

func TestHandlers_ClerkConfig(t *testing.T) {
	v := &stubVerifier{}
	h := newTestRoutes(stubService{}, v)

	rr := do(t, h, http.MethodGet, "/get-clerk-config", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true,"publishableKey":"pk_test_123"}`, rr.Body.String())
	require.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	require.Zero(t, v.calls)

	h = NewHandlers(Deps{Service: stubService{}, Verifier: v}).Routes(base)
	rr = do(t, h, http.MethodGet, "/get-clerk-config", "", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "Clerk publishable key not configured", errorOf(t, rr))
}

func TestHandlers_PanicKeepsEnvelope(t *testing.T) {
	h := newTestRoutes(stubService{
		listFn: func(context.Context, string) ([]Note, error) { panic("unexpected nil row") },
	}, &stubVerifier{})

	rr := do(t, h, http.MethodGet, "/read-notes", "good-token", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{"error":"Internal server error","message":"panic: unexpected nil row"}`, rr.Body.String())
}

func TestHandlers_RootBasePath(t *testing.T) {
	h := NewHandlers(Deps{Service: stubService{}, Verifier: &stubVerifier{}, PublishableKey: "pk"}).Routes("/")
	req := httptest.NewRequest(http.MethodGet, "/get-clerk-config", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestNoteID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want NoteID
	}{
		{`{"id":5}`, 5},
		{`{"id":"5"}`, 5},
		{`{"id":" 12 "}`, 12},
		{`{"id":"abc"}`, 0},
		{`{"id":1.5}`, 0},
		{`{"id":5.0}`, 5},
		{`{"id":1e2}`, 100},
		{`{"id":"7.0"}`, 7},
		{`{"id":-3}`, -3},
		{`{"id":1e300}`, 0},
		{`{"id":null}`, 0},
		{`{"id":{}}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		var req DeleteNoteRequest
		require.NoError(t, json.Unmarshal([]byte(tt.in), &req), tt.in)
		require.Equal(t, tt.want, req.ID, tt.in)
	}
}
