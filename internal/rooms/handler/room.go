package handler

import (
	"encoding/json"
	"net/http"

	"hostelbook/internal/rooms/service"
	"hostelbook/pkg/auth"
	apperrors "hostelbook/pkg/errors"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	segmentAll     = "all"
	segmentDetails = "details"
)

type RoomHandler struct {
	service service.RoomService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, authn *middleware.Authenticator, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var req model.RoomCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"), "Create")
		return
	}

	room, err := h.service.Create(r.Context(), principal.UserID, principal.HostelID, &req)
	if err != nil {
		h.writeError(w, err, "Create")
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, httputil.SuccessResponse{
		Message: "Room created successfully",
		Data:    room,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *RoomHandler) ListForHostel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	rooms, err := h.service.ListForHostel(r.Context(), principal.HostelID)
	if err != nil {
		h.writeError(w, err, "ListForHostel")
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForHostel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	room, err := h.service.GetForHostel(r.Context(), ps.ByName("id"), principal.HostelID)
	if err != nil {
		h.writeError(w, err, "GetByID")
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var update model.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"), "Update")
		return
	}

	room, err := h.service.Update(r.Context(), ps.ByName("id"), principal.HostelID, &update)
	if err != nil {
		h.writeError(w, err, "Update")
		return
	}

	if err := httputil.WriteMessage(w, "Room updated successfully", room); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteMessage", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	if err := h.service.Delete(r.Context(), ps.ByName("id"), principal.HostelID); err != nil {
		h.writeError(w, err, "Delete")
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err, "ListAll")
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Details(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetDetails(r.Context(), ps.ByName("roomId"))
	if err != nil {
		h.writeError(w, err, "Details")
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "Details", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, err error, handler string) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// RegisterRoutes mounts the room routes. httprouter cannot hold a static
// segment next to a wildcard, so /api/rooms/all and /api/rooms/details/:id
// share the :id wildcard and are dispatched by its value.
func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	admin := h.authn.Require(model.RoleAdmin)
	anyone := h.authn.Require()

	listAll := anyone(h.ListAll)
	getByID := admin(h.GetByID)
	details := anyone(h.Details)

	router.POST("/api/rooms", admin(h.Create))
	router.GET("/api/rooms", admin(h.ListForHostel))
	router.GET("/api/rooms/:id", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") == segmentAll {
			listAll(w, r, ps)
			return
		}
		getByID(w, r, ps)
	})
	router.GET("/api/rooms/:id/:roomId", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") != segmentDetails {
			h.writeError(w, apperrors.NotFound("Route"), "Details")
			return
		}
		details(w, r, ps)
	})
	router.PUT("/api/rooms/:id", admin(h.Update))
	router.DELETE("/api/rooms/:id", admin(h.Delete))
}
