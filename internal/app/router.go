package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/logiscontrol/logiscontrol/internal/auth"
	"github.com/logiscontrol/logiscontrol/internal/maintenance"
	"github.com/logiscontrol/logiscontrol/internal/masterdata/clients"
	"github.com/logiscontrol/logiscontrol/internal/masterdata/suppliers"
	"github.com/logiscontrol/logiscontrol/internal/observability"
	"github.com/logiscontrol/logiscontrol/internal/orders"
	"github.com/logiscontrol/logiscontrol/internal/production"
	"github.com/logiscontrol/logiscontrol/internal/purchasing"
	"github.com/logiscontrol/logiscontrol/internal/stock"
	"github.com/logiscontrol/logiscontrol/internal/users"
	"github.com/logiscontrol/logiscontrol/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	AuthMiddleware     *auth.Middleware
	UsersHandler       *users.Handler
	PurchasingHandler  *purchasing.Handler
	StockHandler       *stock.Handler
	MaintenanceHandler *maintenance.Handler
	ProductionHandler  *production.Handler
	SuppliersHandler   *suppliers.Handler
	ClientsHandler     *clients.Handler
	OrdersHandler      *orders.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with LogisControl defaults.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		// The supplier-facing quotation and redelivery endpoints authenticate
		// by access token, not by bearer token.
		params.PurchasingHandler.MountPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)

			params.PurchasingHandler.MountRoutes(r)
			r.Route("/stock", params.StockHandler.MountRoutes)
			r.Route("/maintenance", params.MaintenanceHandler.MountRoutes)
			r.Route("/production", params.ProductionHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/clients", params.ClientsHandler.MountRoutes)
			params.OrdersHandler.MountRoutes(r)
			r.Route("/users", params.UsersHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
