package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vinaythakkar13/yatra-sub001/internal/occupancy/service"
	httputil "github.com/vinaythakkar13/yatra-sub001/pkg/http"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type OccupancyHandler struct {
	service service.OccupancyService
	log     *logger.Logger
}

func NewOccupancyHandler(service service.OccupancyService, log *logger.Logger) *OccupancyHandler {
	return &OccupancyHandler{
		service: service,
		log:     log,
	}
}

func (h *OccupancyHandler) Hotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	occ, err := h.service.Hotel(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Hotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, occ); err != nil {
		h.log.Error("failed to write success response", "handler", "Hotel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OccupancyHandler) Fleet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	occ, err := h.service.Fleet(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Fleet", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, occ); err != nil {
		h.log.Error("failed to write success response", "handler", "Fleet", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OccupancyHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/hotels/:id/occupancy", h.Hotel)
	router.GET("/api/v1/occupancy", h.Fleet)
}
