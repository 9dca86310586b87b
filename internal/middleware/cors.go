package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the storefront frontend, served from another origin, to
// call the chat API with its bearer credential.
func CORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
