package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/sigainv/siga-backend/internal/config"
)

// NewCORSHandler builds the CORS layer. Content-Disposition is always
// exposed so browsers can read the CSV export filenames, and a wildcard
// origin disables credentials because the session rides on a cookie.
func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	exposed := cfg.ExposedHeaders
	if !slices.Contains(exposed, "Content-Disposition") {
		exposed = append(slices.Clone(exposed), "Content-Disposition")
	}

	allowCredentials := cfg.AllowCredentials
	if slices.Contains(cfg.AllowedOrigins, "*") {
		allowCredentials = false
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposed,
		AllowCredentials: allowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
