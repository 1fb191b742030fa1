package handler

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// WithCORS wraps the engine with a CORS layer for the given origins.
// Credentials are only allowed when origins are listed explicitly.
func WithCORS(next http.Handler, origins []string, maxAge int) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           maxAge,
	})(next)
}
