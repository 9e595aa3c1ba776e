package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/straye-as/attendance-api/internal/config"
	"go.uber.org/zap"
)

func allowAnyOrigin(_ *http.Request, origin string) bool {
	return origin != ""
}

func denyAllOrigins(_ *http.Request, _ string) bool {
	return false
}

// CORS returns a CORS middleware configured from the application config.
// With no origins configured, development allows every origin and other
// environments deny cross-origin requests.
func CORS(cfg *config.CORSConfig, app *config.AppConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			break
		}
	}

	switch {
	case wildcard:
		if !app.IsDevelopment() {
			logger.Warn("CORS configured with wildcard origin in non-development environment",
				zap.String("environment", app.Environment))
		}
		options.AllowOriginFunc = allowAnyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case app.IsDevelopment():
		options.AllowOriginFunc = allowAnyOrigin
		logger.Info("CORS configured to allow all origins in development mode")
	default:
		// An empty AllowedOrigins means "*" to go-chi/cors, so deny explicitly
		options.AllowOriginFunc = denyAllOrigins
		logger.Warn("CORS configured with no allowed origins - all cross-origin requests will be denied",
			zap.String("environment", app.Environment))
	}

	return cors.Handler(options)
}
