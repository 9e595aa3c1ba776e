package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/logger"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to the user behind it
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*UserContext, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	authenticator Authenticator
	logger        *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(authenticator Authenticator, log *zap.Logger) *Middleware {
	return &Middleware{
		authenticator: authenticator,
		logger:        log,
	}
}

// Authenticate requires a valid session bearer token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", "invalid authorization header format")
			return
		}

		userCtx, err := m.authenticator.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", "session is invalid or has expired")
			return
		}

		logger.WithUser(m.logger, string(userCtx.UserType), userCtx.UserID).Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithUserContext(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUserType ensures the user is one of the given types
func (m *Middleware) RequireUserType(types ...domain.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", "no user context")
				return
			}

			if !userCtx.HasAnyType(types...) {
				writeError(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the user is the admin
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireUserType(domain.UserTypeAdmin)(next)
}

// RequireStudent ensures the user is a student
func (m *Middleware) RequireStudent(next http.Handler) http.Handler {
	return m.RequireUserType(domain.UserTypeStudent)(next)
}

func writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
