// Package httpx holds the response envelope shared by every endpoint:
// CORS headers, preflight and method checks, and JSON bodies.
package httpx

import (
	"encoding/json"
	"net/http"
)

const (
	HeadersPublic = "Content-Type"
	HeadersAuth   = "Content-Type, Authorization"
)

// Endpoint wraps h so that it only answers method. OPTIONS gets an empty
// 200, anything else a 405. CORS headers are set on every response.
func Endpoint(method, allowHeaders string, h http.HandlerFunc) http.Handler {
	allowMethods := method + ", OPTIONS"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Headers", allowHeaders)
		hdr.Set("Access-Control-Allow-Methods", allowMethods)
		hdr.Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case method:
			h(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// WriteInternal answers 500 with a generic error plus the underlying text.
func WriteInternal(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}
