package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	errors "github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/frahmantamala/property-management/pkg/logger"
)

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Errors []errors.ValidationError `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

func asOwner(id int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := errors.ContextWithUser(r.Context(), &errors.User{ID: id, Email: "owner@mail.com"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func paymentRoutes(handler *payment.Handler, owner func(http.Handler) http.Handler) *chi.Mux {
	router := chi.NewRouter()
	if owner != nil {
		router.Use(owner)
	}
	router.Route("/payments", func(r chi.Router) {
		r.Post("/", handler.CreatePayment)
		r.Get("/", handler.ListPayments)
		r.Get("/stats", handler.GetStats)
		r.Get("/stats/{propertyId}", handler.GetStats)
		r.Get("/export", handler.ExportPayments)
		r.Get("/{id}", handler.GetPayment)
		r.Patch("/{id}", handler.UpdatePayment)
		r.Delete("/{id}", handler.DeletePayment)
		r.Post("/{id}/mark-paid", handler.MarkAsPaid)
		r.Post("/{id}/send-reminder", handler.SendReminder)
		r.Get("/{id}/receipt", handler.GetReceipt)
	})
	return router
}

var _ = ginkgo.Describe("Payment Handler", func() {
	var (
		fx      *fixture
		handler *payment.Handler
		router  *chi.Mux
	)

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader).WithContext(context.Background())
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decodeError := func(rec *httptest.ResponseRecorder) errorBody {
		var body errorBody
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body
	}

	ginkgo.BeforeEach(func() {
		fx = newFixture()
		handler = payment.NewHandler(fx.service(), logger.Discard())
		router = paymentRoutes(handler, asOwner(ownerID))
	})

	ginkgo.Describe("POST /payments", func() {
		ginkgo.It("creates a co-living payment and returns 201", func() {
			rec := serve(http.MethodPost, "/payments", map[string]interface{}{
				"tenant_id":          ana,
				"property_id":        houseID,
				"due_date":           "2026-04-01T00:00:00Z",
				"is_co_living_share": true,
				"share_details": map[string]interface{}{
					"percentage":     "40",
					"total_rent":     "1500",
					"common_charges": map[string]interface{}{"internet": "20", "water": 15},
				},
			})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			var created payment.View
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(gomega.Succeed())
			gomega.Expect(created.Amount.StringFixed(2)).To(gomega.Equal("635.00"))
			gomega.Expect(created.Status).To(gomega.Equal(payment.StatusPending))
		})

		ginkgo.It("returns 400 with the mismatch code for a tenant of another property", func() {
			rec := serve(http.MethodPost, "/payments", map[string]interface{}{
				"tenant_id":   ana,
				"property_id": flatID,
				"amount":      "100",
				"due_date":    "2026-04-01T00:00:00Z",
			})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			body := decodeError(rec)
			gomega.Expect(body.Error.Details.Errors).To(gomega.HaveLen(1))
			gomega.Expect(body.Error.Details.Errors[0].Field).To(gomega.Equal("tenant_id"))
			gomega.Expect(body.Error.Details.Errors[0].Code).To(gomega.Equal(string(errors.ErrCodeTenantMismatch)))
		})

		ginkgo.It("rejects unknown fields", func() {
			rec := serve(http.MethodPost, "/payments", map[string]interface{}{"tenant": 1})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decodeError(rec).Error.Type).To(gomega.Equal(string(errors.ErrorTypeValidation)))
		})
	})

	ginkgo.Describe("GET /payments", func() {
		ginkgo.It("lists the owner's payments with paging info", func() {
			fx.seedPending(flatTenant, flatID, "1200", fx.now)
			fx.seedPending(foreigner, foreignID, "900", fx.now)

			rec := serve(http.MethodGet, "/payments?status=pending", nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var body struct {
				Payments []payment.View `json:"payments"`
				Count    int            `json:"count"`
				Limit    int            `json:"limit"`
			}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Count).To(gomega.Equal(1))
			gomega.Expect(body.Limit).To(gomega.Equal(payment.DefaultListLimit))
		})

		ginkgo.It("rejects malformed query parameters", func() {
			rec := serve(http.MethodGet, "/payments?property_id=abc", nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))

			rec = serve(http.MethodGet, "/payments?status=cancelled", nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("POST /payments/{id}/mark-paid", func() {
		ginkgo.It("returns the paid payment", func() {
			seeded := fx.seedPending(flatTenant, flatID, "1200", fx.now)

			rec := serve(http.MethodPost, fmt.Sprintf("/payments/%d/mark-paid", seeded.ID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var view payment.View
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(gomega.Succeed())
			gomega.Expect(view.Status).To(gomega.Equal(payment.StatusPaid))
			gomega.Expect(view.PaidDate).ToNot(gomega.BeNil())
		})

		ginkgo.It("returns 403 for another owner's payment", func() {
			seeded := fx.seedPending(foreigner, foreignID, "900", fx.now)

			rec := serve(http.MethodPost, fmt.Sprintf("/payments/%d/mark-paid", seeded.ID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeError(rec).Error.Code).To(gomega.Equal(string(errors.ErrCodeForbidden)))
		})

		ginkgo.It("returns 404 for unknown payments and 400 for bad ids", func() {
			gomega.Expect(serve(http.MethodPost, "/payments/999/mark-paid", nil).Code).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(serve(http.MethodPost, "/payments/abc/mark-paid", nil).Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("POST /payments/{id}/send-reminder", func() {
		ginkgo.It("returns 422 when the tenant has no email", func() {
			seeded := fx.seedPending(noEmail, houseID, "500", fx.now)

			rec := serve(http.MethodPost, fmt.Sprintf("/payments/%d/send-reminder", seeded.ID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnprocessableEntity))
			gomega.Expect(decodeError(rec).Error.Code).To(gomega.Equal(string(errors.ErrCodeTenantEmailMissing)))
		})
	})

	ginkgo.Describe("PATCH and DELETE /payments/{id}", func() {
		ginkgo.It("updates the amount", func() {
			seeded := fx.seedPending(flatTenant, flatID, "1200", fx.now)

			rec := serve(http.MethodPatch, fmt.Sprintf("/payments/%d", seeded.ID), map[string]interface{}{"amount": "1250.50"})

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(fx.repo.stored(seeded.ID).Amount.StringFixed(2)).To(gomega.Equal("1250.50"))
		})

		ginkgo.It("deletes with 204", func() {
			seeded := fx.seedPending(flatTenant, flatID, "1200", fx.now)

			rec := serve(http.MethodDelete, fmt.Sprintf("/payments/%d", seeded.ID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(fx.repo.stored(seeded.ID)).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("downloads", func() {
		ginkgo.It("serves the receipt as a pdf attachment", func() {
			seeded := fx.seedPending(flatTenant, flatID, "1200", fx.now)

			rec := serve(http.MethodGet, fmt.Sprintf("/payments/%d/receipt", seeded.ID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Header().Get("Content-Type")).To(gomega.Equal("application/pdf"))
			gomega.Expect(rec.Header().Get("Content-Disposition")).To(gomega.ContainSubstring(fmt.Sprintf("receipt-%d.pdf", seeded.ID)))
		})

		ginkgo.It("serves the export as a spreadsheet", func() {
			rec := serve(http.MethodGet, "/payments/export", nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Header().Get("Content-Disposition")).To(gomega.ContainSubstring(".xlsx"))
		})
	})

	ginkgo.Describe("GET /payments/stats", func() {
		ginkgo.It("summarizes one property", func() {
			fx.seedPending(flatTenant, flatID, "1200", fx.now)

			rec := serve(http.MethodGet, fmt.Sprintf("/payments/stats/%d", flatID), nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var result payment.Stats
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
			gomega.Expect(result.Total).To(gomega.Equal(int64(1)))
			gomega.Expect(*result.PropertyID).To(gomega.Equal(flatID))
		})
	})

	ginkgo.Describe("without an authenticated owner", func() {
		ginkgo.It("returns 401", func() {
			router = paymentRoutes(handler, nil)

			rec := serve(http.MethodGet, "/payments", nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
