package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the cross-origin policy. An empty list or "*" allows any origin
// without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, o := range origins {
		if o == "*" {
			allowCredentials = false
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
