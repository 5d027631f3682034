package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into the usual 500 envelope. An
// http.ErrAbortHandler panic is passed through so the server can abort the
// connection.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint
					panic(rvr)
				}

				logger.ErrorContext(r.Context(), "handler panic",
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				if r.Header.Get("Connection") != "Upgrade" {
					WriteInternal(w, fmt.Errorf("panic: %v", rvr))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
