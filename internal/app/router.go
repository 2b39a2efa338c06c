package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-ops/meridian/internal/coa"
	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/observability"
	"github.com/meridian-ops/meridian/internal/reports"
	"github.com/meridian-ops/meridian/internal/voucher"
	"github.com/meridian-ops/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AccountHandler *coa.Handler
	LedgerHandler  *ledger.Handler
	VoucherHandler *voucher.Handler
	ReportHandler  *reports.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Get("/metrics", params.Metrics.Handler().ServeHTTP)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.AccountHandler != nil {
			params.AccountHandler.MountRoutes(api)
		}
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(api)
		}
		if params.VoucherHandler != nil {
			params.VoucherHandler.MountRoutes(api)
		}
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(api)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			params.JobHandler.MountRoutes(jr)
		})
	}

	return r
}
