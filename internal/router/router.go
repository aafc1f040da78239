package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/challenge"
	"github.com/butecodosdevs/buteco-core/internal/farm"
	"github.com/butecodosdevs/buteco-core/internal/metrics"
	"github.com/butecodosdevs/buteco-core/internal/position"
)

// Deps is what every router needs besides its domain handlers.
type Deps struct {
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Limiter *IPRateLimiter

	// CORSOrigins lists browser origins allowed to call the API; "*" allows any.
	CORSOrigins []string
	Guard       func(http.Handler) http.Handler // protects mutating routes; nil leaves them open
}

func newMux(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		RequestIDMiddleware(),
		LoggingMiddleware(d.Logger, d.Metrics),
		middleware.Recoverer,
		SecurityHeadersMiddleware(),
		CORSMiddleware(d.CORSOrigins),
		RateLimitMiddleware(d.Limiter, d.Metrics),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusNotFound, apperror.Body{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusMethodNotAllowed, apperror.Body{Detail: "Method Not Allowed"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	return r
}

func guarded(r chi.Router, guard func(http.Handler) http.Handler) chi.Router {
	if guard == nil {
		return r
	}
	return r.With(guard)
}

// RegisterRoutes builds the political-api: position endpoints plus /challenge.
func RegisterRoutes(d Deps, positions *position.Handler, challenges *challenge.Handler) http.Handler {
	r := newMux(d)

	r.Get("/health", positions.Health)
	guarded(r, d.Guard).Post("/definir_posicao_politica", positions.Set)
	r.Get("/ver_posicao_politica/{usuario}", positions.Get)
	r.Get("/grafico_politico", positions.Graph)
	r.Get("/grafico_politico.png", positions.GraphImage)

	r.Route("/challenge", func(r chi.Router) {
		challenges.Routes(r, d.Guard)
	})
	return r
}

// RegisterFarmRoutes builds the farm-api.
func RegisterFarmRoutes(d Deps, farms *farm.Handler) http.Handler {
	r := newMux(d)

	r.Get("/health", farms.Health)
	r.Get("/balance/{clientId}", farms.Balance)
	r.Get("/farms", farms.ListFarms)
	r.Get("/farms/{id}", farms.GetFarm)
	w := guarded(r, d.Guard)
	w.Post("/farms", farms.CreateFarm)
	w.Post("/farms/{id}/items", farms.AddItem)
	return r
}
