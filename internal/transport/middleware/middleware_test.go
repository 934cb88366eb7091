package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/property-management/api"
	"github.com/frahmantamala/property-management/internal/transport"
	"github.com/frahmantamala/property-management/pkg/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"access_token":"abc","name":"Olivia"}`))
})

var _ = ginkgo.Describe("RecoveryMiddleware", func() {
	ginkgo.It("turns a panic into a generic 500", func() {
		h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		gomega.Expect(rec.Body.String()).To(gomega.Equal(panicResponse))
		gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("boom"))
	})

	ginkgo.It("lets aborted handlers abort", func() {
		h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		gomega.Expect(func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(gomega.PanicWith(http.ErrAbortHandler))
	})
})

var _ = ginkgo.Describe("RequestID", func() {
	var seen string

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	})

	ginkgo.It("echoes the caller's id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()

		RequestID(capture).ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get(RequestIDHeader)).To(gomega.Equal("req-123"))
	})

	ginkgo.It("reuses the id chi assigned", func() {
		rec := httptest.NewRecorder()

		chimiddleware.RequestID(RequestID(capture)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Header().Get(RequestIDHeader)).ToNot(gomega.BeEmpty())
		gomega.Expect(seen).To(gomega.BeEmpty())
	})

	ginkgo.It("mints one when nothing upstream did", func() {
		rec := httptest.NewRecorder()

		RequestID(capture).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(rec.Header().Get(RequestIDHeader)).To(gomega.HaveLen(36))
	})
})

var _ = ginkgo.Describe("CORS", func() {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.It("allows any origin without credentials by default", func() {
		rec := preflight(CORS(nil)(ok), "https://app.example.com")

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("*"))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(gomega.BeEmpty())
	})

	ginkgo.It("allows listed origins with credentials", func() {
		rec := preflight(CORS([]string{"https://app.example.com"})(ok), "https://app.example.com")

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("https://app.example.com"))
		gomega.Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(gomega.Equal("true"))
	})

	ginkgo.It("ignores origins that are not listed", func() {
		rec := preflight(CORS([]string{"https://app.example.com"})(ok), "https://evil.example.com")

		gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("LoggingMiddleware", func() {
	ginkgo.It("masks secrets in logged bodies and headers", func() {
		var out bytes.Buffer
		h := LoggingMiddleware(logger.New(&out, "debug", "json"))(ok)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"owner@mail.com","password":"hunter2"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-token")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		logged := out.String()
		gomega.Expect(logged).To(gomega.ContainSubstring("owner@mail.com"))
		gomega.Expect(logged).ToNot(gomega.ContainSubstring("hunter2"))
		gomega.Expect(logged).ToNot(gomega.ContainSubstring("secret-token"))
		gomega.Expect(logged).ToNot(gomega.ContainSubstring(`\"abc\"`))
		gomega.Expect(logged).To(gomega.ContainSubstring("[FILTERED]"))
	})

	ginkgo.It("keeps the request body readable downstream", func() {
		var got string
		h := LoggingMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			got = body["email"]
		}))
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"owner@mail.com"}`))
		req.Header.Set("Content-Type", "application/json")

		h.ServeHTTP(httptest.NewRecorder(), req)

		gomega.Expect(got).To(gomega.Equal("owner@mail.com"))
	})

	ginkgo.It("masks nested fields", func() {
		filtered := filterSensitiveBody([]byte(`{"user":{"refresh_token":"x","name":"a"},"items":[{"secret":"y"}]}`))

		gomega.Expect(filtered).ToNot(gomega.ContainSubstring(`"x"`))
		gomega.Expect(filtered).ToNot(gomega.ContainSubstring(`"y"`))
		gomega.Expect(filtered).To(gomega.ContainSubstring(`"name":"a"`))
		gomega.Expect(filterSensitiveBody([]byte("not json"))).To(gomega.Equal("[unparseable body]"))
	})
})

var _ = ginkgo.Describe("Metrics", func() {
	ginkgo.It("passes the response through untouched", func() {
		router := chi.NewRouter()
		router.Use(Metrics)
		router.Get("/payments/{id}", ok)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/7", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("Olivia"))
	})
})

var _ = ginkgo.Describe("OpenAPIValidator", func() {
	var router *chi.Mux

	ginkgo.BeforeEach(func() {
		doc, err := LoadOpenAPI(context.Background(), api.OpenAPISpec)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		validate, err := OpenAPIValidator(doc, transport.NewBaseHandler(logger.Discard()))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		router = chi.NewRouter()
		router.Use(validate)
		router.Post("/api/v1/payments", ok)
		router.Get("/api/v1/payments/{id}", ok)
		router.Get("/api/v1/not-documented", ok)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.It("accepts a request that matches the document", func() {
		rec := serve(http.MethodPost, "/api/v1/payments", `{"tenant_id":1,"property_id":2,"amount":"1200","due_date":"2026-04-01T00:00:00Z"}`)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("rejects a body missing required fields", func() {
		rec := serve(http.MethodPost, "/api/v1/payments", `{"tenant_id":1}`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"field":"body"`))
	})

	ginkgo.It("rejects a malformed path parameter", func() {
		rec := serve(http.MethodGet, "/api/v1/payments/abc", "")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"field":"id"`))
	})

	ginkgo.It("lets undocumented routes through", func() {
		rec := serve(http.MethodGet, "/api/v1/not-documented", "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})
})
