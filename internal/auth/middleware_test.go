package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/attendance-api/internal/auth"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuthenticator struct {
	users map[string]*auth.UserContext
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.UserContext, error) {
	user, ok := s.users[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return user, nil
}

func newTestMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&stubAuthenticator{users: map[string]*auth.UserContext{
		"admin-token":   {SessionID: "a", UserType: domain.UserTypeAdmin, UserID: domain.AdminUserID},
		"student-token": {SessionID: "s", UserType: domain.UserTypeStudent, UserID: "ST001", Department: domain.DepartmentCSE},
	}}, zap.NewNop())
}

func TestMiddleware_Authenticate_ValidToken(t *testing.T) {
	middleware := newTestMiddleware()

	var captured *auth.UserContext
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "ST001", captured.UserID)
}

func TestMiddleware_Authenticate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic admin-token"},
		{name: "no token", header: "Bearer"},
		{name: "unknown token", header: "Bearer nope"},
	}

	middleware := newTestMiddleware()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, domain.ErrorTypeUnauthorized, apiErr.Type)
		})
	}
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	middleware := newTestMiddleware()
	handler := middleware.Authenticate(middleware.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		token string
		want  int
	}{
		{token: "admin-token", want: http.StatusNoContent},
		{token: "student-token", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMiddleware_RequireStudent_WithoutUserContext(t *testing.T) {
	middleware := newTestMiddleware()
	handler := middleware.RequireStudent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/attendance", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
