package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func preflight(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/students", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		wantAllowed bool
	}{
		{"development allows any origin", nil, "development", "http://localhost:5173", true},
		{"production denies without origins", nil, "production", "https://evil.example", false},
		{"explicit origin allowed", []string{"https://attendance.example"}, "production", "https://attendance.example", true},
		{"explicit list rejects others", []string{"https://attendance.example"}, "production", "https://other.example", false},
		{"wildcard allows any origin", []string{"*"}, "staging", "https://other.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &config.AppConfig{Environment: tt.environment}
			handler := middleware.CORS(corsConfig(tt.origins...), app, zap.NewNop())(okHandler())

			w := preflight(handler, tt.origin)

			if tt.wantAllowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
