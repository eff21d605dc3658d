package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/oswork-erp/oswork-erp/internal/audit/http"
	brandshttp "github.com/oswork-erp/oswork-erp/internal/brands/http"
	insightshttp "github.com/oswork-erp/oswork-erp/internal/insights/http"
	ordershttp "github.com/oswork-erp/oswork-erp/internal/orders/http"
	periodshttp "github.com/oswork-erp/oswork-erp/internal/periods/http"
	settingshttp "github.com/oswork-erp/oswork-erp/internal/settings/http"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	OrdersHandler   *ordershttp.Handler
	PeriodsHandler  *periodshttp.Handler
	BrandsHandler   *brandshttp.Handler
	SettingsHandler *settingshttp.Handler
	AuditHandler    *audithttp.Handler
	InsightsHandler *insightshttp.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		if params.OrdersHandler != nil {
			params.OrdersHandler.MountRoutes(api)
		}
		if params.PeriodsHandler != nil {
			params.PeriodsHandler.MountRoutes(api)
		}
		if params.BrandsHandler != nil {
			params.BrandsHandler.MountRoutes(api)
		}
		if params.SettingsHandler != nil {
			params.SettingsHandler.MountRoutes(api)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(api)
		}
		if params.InsightsHandler != nil {
			params.InsightsHandler.MountRoutes(api)
		}
	})

	return r
}
