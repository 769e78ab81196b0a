package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the given allowed origins.
// Credentials are not allowed. The request ID header is readable by browser clients.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	})
}
