package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/talgurevich/hitquote-accounts/internal/http/handlers"
	"github.com/talgurevich/hitquote-accounts/internal/middleware"
	"github.com/talgurevich/hitquote-accounts/internal/obs"
)

// NewRouter assembles the API surface.
func NewRouter(app *handlers.App, rateLimitPerMin int) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.Logger(app.Logger))
	r.Use(obs.Instrument)
	r.Use(middleware.RateLimit(rateLimitPerMin))

	r.Get("/v1/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", obs.Handler())

	r.Route("/v1/identity", func(r chi.Router) {
		r.Post("/reconcile", app.ReconcileOrphans)
		r.Post("/link", app.LinkFederated)
	})

	r.Route("/v1/upgrade-requests", func(r chi.Router) {
		r.Post("/", app.SubmitUpgrade)
		r.Get("/status", app.UpgradeStatus)
	})

	return r
}
