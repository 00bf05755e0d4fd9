package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vinaythakkar13/yatra-sub001/internal/allocation/service"
	httputil "github.com/vinaythakkar13/yatra-sub001/pkg/http"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

// DraftView is what the UI renders while a group's rooms and beds are being
// picked. Nothing in it is persisted.
type DraftView struct {
	HotelID      string         `json:"hotel_id"`
	Rooms        []string       `json:"rooms"`
	Beds         map[string]int `json:"beds"`
	AssignedBeds int            `json:"assigned_beds"`
	PartySize    int            `json:"party_size"`
}

type AllocationHandler struct {
	service service.AllocationService
	log     *logger.Logger
}

func NewAllocationHandler(service service.AllocationService, log *logger.Logger) *AllocationHandler {
	return &AllocationHandler{
		service: service,
		log:     log,
	}
}

func (h *AllocationHandler) Assign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var ref model.RoomRef
	if err := httputil.DecodeJSON(r, &ref); err != nil {
		h.writeError(w, "Assign", err)
		return
	}

	result, err := h.service.Assign(r.Context(), ps.ByName("id"), ref)
	if err != nil {
		h.writeError(w, "Assign", err)
		return
	}
	h.writeSuccess(w, "Assign", result)
}

func (h *AllocationHandler) Reassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var ref model.RoomRef
	if err := httputil.DecodeJSON(r, &ref); err != nil {
		h.writeError(w, "Reassign", err)
		return
	}

	result, err := h.service.Reassign(r.Context(), ps.ByName("id"), ref)
	if err != nil {
		h.writeError(w, "Reassign", err)
		return
	}
	h.writeSuccess(w, "Reassign", result)
}

func (h *AllocationHandler) Unassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.Unassign(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Unassign", err)
		return
	}
	h.writeSuccess(w, "Unassign", result)
}

// Draft validates a selection against the hotel and party without
// committing it.
func (h *AllocationHandler) Draft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.DraftRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Draft", err)
		return
	}

	draft, err := h.service.NewDraft(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Draft", err)
		return
	}
	h.writeSuccess(w, "Draft", DraftView{
		HotelID:      draft.HotelID,
		Rooms:        draft.Rooms(),
		Beds:         draft.Assignments(),
		AssignedBeds: draft.AssignedBeds(),
		PartySize:    draft.PartySize(),
	})
}

func (h *AllocationHandler) AssignDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.DraftRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AssignDraft", err)
		return
	}

	id := ps.ByName("id")
	draft, err := h.service.NewDraft(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "AssignDraft", err)
		return
	}
	result, err := h.service.AssignDraft(r.Context(), id, draft)
	if err != nil {
		h.writeError(w, "AssignDraft", err)
		return
	}
	h.writeSuccess(w, "AssignDraft", result)
}

func (h *AllocationHandler) Rooms(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Rooms(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Rooms", err)
		return
	}
	h.writeSuccess(w, "Rooms", view)
}

func (h *AllocationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/registrations/:id/assign", h.Assign)
	router.POST("/api/v1/registrations/:id/reassign", h.Reassign)
	router.POST("/api/v1/registrations/:id/unassign", h.Unassign)
	router.POST("/api/v1/registrations/:id/draft", h.Draft)
	router.POST("/api/v1/registrations/:id/assign-draft", h.AssignDraft)
	router.GET("/api/v1/registrations/:id/rooms", h.Rooms)
}

func (h *AllocationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AllocationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
