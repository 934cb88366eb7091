package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/property-management/pkg/logger"
)

const panicResponse = `{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"Internal server error"}}`

// RecoveryMiddleware turns a panic into a generic 500 and logs the stack.
func RecoveryMiddleware(fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.FromOr(r.Context(), fallback).Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(panicResponse))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
