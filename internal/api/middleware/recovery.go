package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/classpulse/classpulse/internal/api/response"
)

// Recovery turns handler panics into a 500 error response. The panic is
// logged with the request id assigned by Logger so it can be correlated with
// the request log line.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				attrs := []any{
					"error", err,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				}
				if id, ok := GetRequestID(r); ok {
					attrs = append(attrs, "request_id", id)
				}
				slog.Error("panic recovered", attrs...)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
