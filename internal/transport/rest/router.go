package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/property-management/internal/auth"
	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/frahmantamala/property-management/internal/stats"
	"github.com/frahmantamala/property-management/internal/transport/middleware"
	"github.com/frahmantamala/property-management/internal/transport/swagger"
	"github.com/frahmantamala/property-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Payment *payment.Handler
	Stats   *stats.Handler
}

type RouterOptions struct {
	AllowedOrigins []string
	OpenAPISpec    []byte
	// RequestValidator is applied to /api/v1 when set.
	RequestValidator func(http.Handler) http.Handler
	MetricsPath      string
	MetricsHandler   http.Handler
	Redis            redis.UniversalClient
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.Redis)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.Metrics)

	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.MetricsHandler)
	}

	if len(opts.OpenAPISpec) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LoggingMiddleware(logger))
		if opts.RequestValidator != nil {
			r.Use(opts.RequestValidator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Stats != nil {
				pr.Get("/stats/dashboard", h.Stats.GetDashboard)
			}

			if h.Payment != nil {
				pr.Route("/payments", func(pmr chi.Router) {
					pmr.Post("/", h.Payment.CreatePayment)
					pmr.Get("/", h.Payment.ListPayments)
					pmr.Get("/stats", h.Payment.GetStats)
					pmr.Get("/stats/{propertyId}", h.Payment.GetStats)
					pmr.Get("/export", h.Payment.ExportPayments)

					pmr.Route("/{id}", func(ir chi.Router) {
						ir.Get("/", h.Payment.GetPayment)
						ir.Patch("/", h.Payment.UpdatePayment)
						ir.Delete("/", h.Payment.DeletePayment)
						ir.Post("/mark-paid", h.Payment.MarkAsPaid)
						ir.Post("/send-reminder", h.Payment.SendReminder)
						ir.Get("/receipt", h.Payment.GetReceipt)
					})
				})
			}
		})
	})
}
