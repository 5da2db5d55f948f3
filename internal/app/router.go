package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lipiprint/lipiprint/internal/auth"
	"github.com/lipiprint/lipiprint/internal/files"
	"github.com/lipiprint/lipiprint/internal/invoice"
	"github.com/lipiprint/lipiprint/internal/observability"
	"github.com/lipiprint/lipiprint/internal/orders"
	"github.com/lipiprint/lipiprint/internal/pricingrules"
	"github.com/lipiprint/lipiprint/internal/users"
	"github.com/lipiprint/lipiprint/jobs"
	"github.com/lipiprint/lipiprint/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	TokenStore   *auth.TokenStore
	AuthResolver auth.Resolver

	AuthHandler    *users.AuthHandler
	UsersHandler   *users.Handler
	FilesHandler   *files.Handler
	OrdersHandler  *orders.Handler
	PricingHandler *pricingrules.Handler
	InvoiceHandler *invoice.Handler
	ReportHandler  *report.Handler
	JobHandler     *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with LipiPrint defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	requireUser := auth.RequireUser(params.TokenStore, params.AuthResolver)

	r.Route("/api/v1", func(r chi.Router) {
		// public
		params.AuthHandler.MountRoutes(r)
		if params.PricingHandler != nil {
			params.PricingHandler.MountRoutes(r)
		}

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			params.UsersHandler.MountRoutes(r)
			params.FilesHandler.MountRoutes(r)
			params.OrdersHandler.MountRoutes(r)
			if params.InvoiceHandler != nil {
				params.InvoiceHandler.MountRoutes(r)
			}
		})

		// admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireUser, auth.RequireAdmin)
			params.UsersHandler.MountAdminRoutes(r)
			params.OrdersHandler.MountAdminRoutes(r)
			if params.PricingHandler != nil {
				params.PricingHandler.MountAdminRoutes(r)
			}
			if params.ReportHandler != nil {
				r.Route("/report", params.ReportHandler.MountRoutes)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
