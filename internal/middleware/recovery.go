package middleware

import (
	"net/http"
	"runtime/debug"

	"triptailor-backend/pkg/api"

	"go.uber.org/zap"
)

// Recovery turns handler panics into 500 responses and logs the stack.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()))

					// Nothing can be sent once the handler has started writing.
					if w.Header().Get("Content-Type") == "" {
						api.Error(w, http.StatusInternalServerError, "Internal server error")
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
