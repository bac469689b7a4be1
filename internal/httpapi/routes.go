package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/draftlab/mlbb-draft-backend/internal/ws"
)

func SetupRoutes(s *Server, live *ws.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/draft/recommend", withMetrics("recommend", s.Recommend))
	r.Post("/api/draft/assign", withMetrics("assign", s.Assign))
	r.Get("/api/draft/meta", withMetrics("meta", s.Meta))
	r.Get("/ws", live.Handle)
	r.Get("/healthz", s.Healthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
