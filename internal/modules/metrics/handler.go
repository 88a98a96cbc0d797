package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

// Handler serves the JSON metrics snapshot.
type Handler struct{ tracker *Tracker }

func NewHandler(tracker *Tracker) *Handler { return &Handler{tracker: tracker} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/metrics", h.getMetrics)
}

func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.tracker.Snapshot())
}

// ExpositionHandler serves the Prometheus text format for everything gathered by g.
func ExpositionHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
