package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/straye-as/attendance-api/internal/config"
)

type header struct {
	name  string
	value string
}

// securityHeaders resolves the configured headers once; empty values are skipped
func securityHeaders(cfg *config.SecurityConfig) []header {
	var headers []header
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, header{name: name, value: value})
		}
	}

	if cfg.ContentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("X-XSS-Protection", cfg.XSSProtection)
	add("Content-Security-Policy", cfg.ContentSecurityPolicy)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	add("Permissions-Policy", cfg.PermissionsPolicy)

	if cfg.EnableHSTS {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		add("Strict-Transport-Security", hsts)
	}

	return headers
}

// SecurityHeaders returns a middleware that adds security headers to responses.
// Paths under skipCSPPrefix (the Swagger UI, which needs inline scripts) get
// no Content-Security-Policy.
func SecurityHeaders(cfg *config.SecurityConfig, skipCSPPrefix string) func(http.Handler) http.Handler {
	headers := securityHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			skipCSP := skipCSPPrefix != "" && strings.HasPrefix(r.URL.Path, skipCSPPrefix)

			h := w.Header()
			for _, hdr := range headers {
				if skipCSP && hdr.name == "Content-Security-Policy" {
					continue
				}
				h.Set(hdr.name, hdr.value)
			}

			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}
