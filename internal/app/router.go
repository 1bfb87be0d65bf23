package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumapos/lumapos/internal/catalog"
	"github.com/lumapos/lumapos/internal/importer"
	"github.com/lumapos/lumapos/internal/observability"
	"github.com/lumapos/lumapos/internal/sales"
	"github.com/lumapos/lumapos/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	CatalogHandler  *catalog.Handler
	SalesHandler    *sales.Handler
	ImporterHandler *importer.Handler
	UsersHandler    *users.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Route("/api", func(r chi.Router) {
		if params.CatalogHandler != nil {
			params.CatalogHandler.Routes(r)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.Routes(r)
		}
		if params.ImporterHandler != nil {
			params.ImporterHandler.Routes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.Routes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
