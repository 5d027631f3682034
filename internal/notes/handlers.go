package notes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"example.com/clerk-notes/internal/auth"
	"example.com/clerk-notes/internal/httpx"
	"example.com/clerk-notes/internal/logging"
)

const maxBodyBytes = 1 << 20

// Service is the note use-case layer. userID is always the verified caller.
type Service interface {
	Create(ctx context.Context, userID string, req CreateNoteRequest) (Note, error)
	List(ctx context.Context, userID string) ([]Note, error)
	Update(ctx context.Context, userID string, req UpdateNoteRequest) (Note, error)
	Delete(ctx context.Context, userID string, id NoteID) (int64, error)
}

// Recorder receives operation outcomes, typically for metrics.
type Recorder interface {
	NoteOperation(operation, outcome string)
	TokenVerification(accepted bool)
}

type Deps struct {
	Service        Service
	Verifier       auth.Verifier
	PublishableKey string
	Logger         *slog.Logger
	Recorder       Recorder
}

type Handlers struct {
	svc            Service
	verifier       auth.Verifier
	publishableKey string
	logger         *slog.Logger
	rec            Recorder
}

func NewHandlers(d Deps) *Handlers {
	h := &Handlers{
		svc:            d.Service,
		verifier:       d.Verifier,
		publishableKey: d.PublishableKey,
		logger:         d.Logger,
		rec:            d.Recorder,
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	if h.rec == nil {
		h.rec = noopRecorder{}
	}
	return h
}

// Routes mounts the five endpoints under basePath.
func (h *Handlers) Routes(basePath string) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.Recoverer(h.logger))

	basePath = "/" + strings.Trim(basePath, "/")
	if basePath == "/" {
		basePath = ""
	}

	r.Handle(basePath+"/create-note", httpx.Endpoint(http.MethodPost, httpx.HeadersAuth, h.authenticated(h.create)))
	r.Handle(basePath+"/read-notes", httpx.Endpoint(http.MethodGet, httpx.HeadersAuth, h.authenticated(h.list)))
	r.Handle(basePath+"/update-note", httpx.Endpoint(http.MethodPut, httpx.HeadersAuth, h.authenticated(h.update)))
	r.Handle(basePath+"/delete-note", httpx.Endpoint(http.MethodDelete, httpx.HeadersAuth, h.authenticated(h.delete)))
	r.Handle(basePath+"/get-clerk-config", httpx.Endpoint(http.MethodGet, httpx.HeadersPublic, h.clerkConfig))

	return r
}

// authenticated resolves the bearer token before next runs. The reason for
// a rejection is logged, never returned.
func (h *Handlers) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		id, err := h.verifier.Verify(r.Context(), token)
		if err != nil {
			h.rec.TokenVerification(false)
			h.logger.WarnContext(r.Context(), "token verification failed", logging.Err(err))
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		h.rec.TokenVerification(true)

		next(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	}
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := h.svc.Create(r.Context(), callerID(r), req)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	h.rec.NoteOperation("create", "ok")
	httpx.WriteJSON(w, http.StatusCreated, NoteResponse{Success: true, Note: n})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), callerID(r))
	if err != nil {
		h.fail(w, r, "read", err)
		return
	}
	if items == nil {
		items = []Note{}
	}
	h.rec.NoteOperation("read", "ok")
	httpx.WriteJSON(w, http.StatusOK, ListNotesResponse{Success: true, Notes: items, Count: len(items)})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := h.svc.Update(r.Context(), callerID(r), req)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	h.rec.NoteOperation("update", "ok")
	httpx.WriteJSON(w, http.StatusOK, NoteResponse{Success: true, Note: n})
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.svc.Delete(r.Context(), callerID(r), req.ID)
	if err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	h.rec.NoteOperation("delete", "ok")
	httpx.WriteJSON(w, http.StatusOK, DeleteNoteResponse{
		Success:   true,
		Message:   "Note deleted successfully",
		DeletedID: id,
	})
}

func (h *Handlers) clerkConfig(w http.ResponseWriter, r *http.Request) {
	if h.publishableKey == "" {
		httpx.WriteJSON(w, http.StatusInternalServerError, httpx.ErrorBody{
			Error:   "Clerk publishable key not configured",
			Message: "Please set CLERK_PUBLISHABLE_KEY in environment variables",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ConfigResponse{Success: true, PublishableKey: h.publishableKey})
}

// fail maps a use-case error onto the response envelope.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		h.rec.NoteOperation(op, "bad_request")
		httpx.WriteError(w, http.StatusBadRequest, "Valid note ID is required")
	case errors.Is(err, ErrTitleRequired):
		h.rec.NoteOperation(op, "bad_request")
		httpx.WriteError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, ErrUserMismatch):
		h.rec.NoteOperation(op, "forbidden")
		httpx.WriteError(w, http.StatusForbidden, "User ID mismatch")
	case errors.Is(err, ErrNotFound):
		h.rec.NoteOperation(op, "not_found")
		httpx.WriteError(w, http.StatusNotFound, "Note not found or access denied")
	default:
		h.rec.NoteOperation(op, "error")
		h.logger.ErrorContext(r.Context(), "note operation failed",
			slog.String("operation", op),
			logging.Err(err),
		)
		httpx.WriteInternal(w, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func callerID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

type noopRecorder struct{}

func (noopRecorder) NoteOperation(string, string) {}
func (noopRecorder) TokenVerification(bool)      {}
