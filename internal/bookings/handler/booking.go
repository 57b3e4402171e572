package handler

import (
	"net/http"

	"hostelbook/internal/bookings/service"
	"hostelbook/pkg/auth"
	apperrors "hostelbook/pkg/errors"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, authn *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Create")
	if !ok {
		return
	}

	booking, err := h.service.Create(r.Context(), principal.UserID, ps.ByName("roomId"))
	if err != nil {
		h.writeError(w, err, "Create")
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, httputil.SuccessResponse{
		Message: "Booking created successfully",
		Data:    booking,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "Status")
	if !ok {
		return
	}

	active, err := h.service.GetActive(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, err, "Status")
		return
	}

	status := model.ActiveBookingStatus{
		HasActiveBooking: active != nil,
		ActiveBooking:    active,
	}
	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "Status", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "MyBookings")
	if !ok {
		return
	}

	bookings, err := h.service.ListForStudent(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, err, "MyBookings")
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "MyBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Cancel")
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), principal.UserID); err != nil {
		h.writeError(w, err, "Cancel")
		return
	}

	if err := httputil.WriteMessage(w, "Booking cancelled successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) Pending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "Pending")
	if !ok {
		return
	}

	bookings, err := h.service.ListPendingForHostel(r.Context(), principal.HostelID)
	if err != nil {
		h.writeError(w, err, "Pending")
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Pending", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) HostelBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "HostelBookings")
	if !ok {
		return
	}

	bookings, err := h.service.ListForHostel(r.Context(), principal.HostelID)
	if err != nil {
		h.writeError(w, err, "HostelBookings")
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "HostelBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "UpdateStatus")
	if !ok {
		return
	}

	action := ps.ByName("action")
	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), action, principal.HostelID)
	if err != nil {
		h.writeError(w, err, "UpdateStatus")
		return
	}

	if err := httputil.WriteMessage(w, "Booking "+booking.Status+" successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) principal(w http.ResponseWriter, r *http.Request, handler string) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, apperrors.Unauthorized("No token, authorization denied"), handler)
	}
	return principal, ok
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error, handler string) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	student := h.authn.Require(model.RoleStudent)
	admin := h.authn.Require(model.RoleAdmin)

	router.POST("/api/bookings/book/:roomId", student(h.Create))
	router.GET("/api/bookings/status", student(h.Status))
	router.GET("/api/bookings/student/me", student(h.MyBookings))
	router.DELETE("/api/bookings/:id/cancel", student(h.Cancel))
	router.GET("/api/bookings/admin/pending", admin(h.Pending))
	router.GET("/api/bookings/admin/all", admin(h.HostelBookings))
	router.PUT("/api/bookings/admin/:id/:action", admin(h.UpdateStatus))
}
