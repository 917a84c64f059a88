package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"order-events-playground/shared/pkg/metrics"
)

type Handlers struct {
	Health      http.HandlerFunc
	CreateOrder http.HandlerFunc
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware("api"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", h.CreateOrder)
	})
	return r
}
