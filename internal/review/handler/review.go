package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vinaythakkar13/yatra-sub001/internal/review/service"
	httputil "github.com/vinaythakkar13/yatra-sub001/pkg/http"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

type ReviewHandler struct {
	service service.ReviewService
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log,
	}
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Approve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reg); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RejectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reject", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reg, err := h.service.Reject(r.Context(), ps.ByName("id"), req.Reason)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reject", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reg); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) ListByTrip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	regs, err := h.service.ListByTrip(r.Context(), ps.ByName("tripId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByTrip", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, regs); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByTrip", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/registrations/:id/approve", h.Approve)
	router.POST("/api/v1/registrations/:id/reject", h.Reject)
	router.GET("/api/v1/trips/:tripId/registrations", h.ListByTrip)
}
