package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const SpecPath = "/openapi.yml"

// Handler serves Swagger UI pointed at the embedded API document.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecPath),
		httpSwagger.DocExpansion("list"),
	)
}

// SpecHandler serves the raw API document.
func SpecHandler(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec)
	}
}
