package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/pkg/logger"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler  *Handler
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator("handler-access-secret-handler-access", "handler-refresh-secret-handler-refresh", time.Minute, time.Hour)
		handler = NewHandler(NewService(newMockRepository(), tokenGen, logger.Discard()), logger.Discard())
	})

	post := func(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns tokens for valid credentials", func() {
			rec := post(handler.Login, `{"email":"owner@example.com","password":"correct_password"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var tokens AuthTokens
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("returns 401 for a wrong password", func() {
			rec := post(handler.Login, `{"email":"owner@example.com","password":"wrong"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(apperrors.ErrCodeInvalidCredentials)))
		})

		ginkgo.It("returns 400 for a malformed body", func() {
			rec := post(handler.Login, `{"email":`)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("RefreshToken", func() {
		ginkgo.It("requires the refresh token", func() {
			rec := post(handler.RefreshToken, `{}`)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var reached *apperrors.User

		protected := func() http.Handler {
			return handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached, _ = apperrors.UserFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
		}

		ginkgo.BeforeEach(func() {
			reached = nil
		})

		ginkgo.It("attaches the owner for a valid bearer token", func() {
			token, _, err := tokenGen.GenerateAccessToken(1, "owner@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			req := httptest.NewRequest(http.MethodGet, "/payments", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).ToNot(gomega.BeNil())
			gomega.Expect(reached.ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("rejects requests without a token", func() {
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("rejects a refresh token", func() {
			token, err := tokenGen.GenerateRefreshToken(1, "owner@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			req := httptest.NewRequest(http.MethodGet, "/payments", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
