// Package handlers serves the trip card HTTP API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"triptailor-backend/internal/middleware"
	"triptailor-backend/internal/repository"
	"triptailor-backend/pkg/api"
	appErrors "triptailor-backend/pkg/errors"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey struct {
	name string
}

var userIDKey = contextKey{"userID"}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func getUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	fields := []zap.Field{zap.String("request_id", middleware.GetRequestID(r.Context())), zap.Error(err)}
	switch {
	case appErrors.IsValidation(err):
		logger.Info("validation error", fields...)
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsConflict(err) || repository.IsConflict(err):
		logger.Warn("conflict", fields...)
		api.Error(w, http.StatusConflict, "The resource was modified by another request. Please retry.")
	case isTimeoutError(err) || isConnectionError(err):
		logger.Warn("upstream unavailable", fields...)
		api.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		logger.Error("internal error", fields...)
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "timeout") || strings.Contains(s, "context deadline exceeded")
}

func isConnectionError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable")
}

// Authenticator reads the user id from the API Gateway Lambda authorizer
// context ("sub").
func Authenticator(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context())
			if !ok {
				logger.Error("proxy request context not available")
				api.Error(w, http.StatusInternalServerError, "Authentication context not available")
				return
			}
			if proxyCtx.Authorizer == nil || proxyCtx.Authorizer.Lambda == nil {
				api.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			userID, ok := proxyCtx.Authorizer.Lambda["sub"].(string)
			if !ok || userID == "" {
				api.Error(w, http.StatusUnauthorized, "Invalid authentication")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// JWTAuthenticator validates an HS256 bearer token and uses its subject as
// the user id. It serves the standalone HTTP server.
func JWTAuthenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				api.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				api.Error(w, http.StatusUnauthorized, "Invalid authentication")
				return
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				api.Error(w, http.StatusUnauthorized, "Invalid authentication")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}
