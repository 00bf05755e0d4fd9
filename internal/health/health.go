package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "github.com/vinaythakkar13/yatra-sub001/pkg/http"
	kafkamiddleware "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/middleware"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

const readyTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status  string                           `json:"status"`
	Store   string                           `json:"store,omitempty"`
	Backend string                           `json:"backend,omitempty"`
	Events  *kafkamiddleware.MetricsSnapshot `json:"events,omitempty"`
}

type HealthHandler struct {
	store   Pinger
	backend string
	metrics *kafkamiddleware.Metrics
	log     *logger.Logger
}

// NewHealthHandler reports liveness and store readiness. metrics may be nil
// when event publishing is disabled.
func NewHealthHandler(store Pinger, backend string, metrics *kafkamiddleware.Metrics, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		backend: backend,
		metrics: metrics,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Store: "ok", Backend: h.backend}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		resp.Events = &snap
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("Store health check failed", "error", err, "backend", h.backend, "path", r.URL.Path)
		resp.Status = "unavailable"
		resp.Store = "error"
		status = http.StatusServiceUnavailable
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
