package middleware

import (
	"context"
	"fmt"
	"net/http"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// LoadOpenAPI parses and validates the embedded API document.
func LoadOpenAPI(ctx context.Context, spec []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIValidator rejects requests whose parameters or JSON body do not match
// the API document. Routes missing from the document pass through untouched.
// Authentication is left to the auth middleware.
func OpenAPIValidator(doc *openapi3.T, base *transport.BaseHandler) (func(http.Handler) http.Handler, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				base.HandleError(w, requestValidationError(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func requestValidationError(err error) *errors.AppError {
	switch e := err.(type) {
	case *openapi3filter.RequestError:
		field := ""
		if e.Parameter != nil {
			field = e.Parameter.Name
		} else if e.RequestBody != nil {
			field = "body"
		}
		if field != "" {
			return errors.NewValidationFieldError(field, e.Error(), errors.ErrCodeValidationFailed)
		}
	}
	return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
}
