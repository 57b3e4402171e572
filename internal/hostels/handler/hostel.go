package handler

import (
	"encoding/json"
	"net/http"

	"hostelbook/internal/hostels/service"
	apperrors "hostelbook/pkg/errors"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HostelHandler struct {
	service service.HostelService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewHostelHandler(service service.HostelService, authn *middleware.Authenticator, log *logger.Logger) *HostelHandler {
	return &HostelHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *HostelHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hostel model.Hostel
	if err := json.NewDecoder(r.Body).Decode(&hostel); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &hostel); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, httputil.SuccessResponse{
		Message: "Hostel created successfully",
		Data:    hostel,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteJSON", "error", err)
	}
}

func (h *HostelHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hostels, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, hostels); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

// RegisterRoutes leaves the listing public so the signup form can offer hostels.
func (h *HostelHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/hostels", h.GetAll)
	router.POST("/api/hostels", h.authn.Require(model.RoleAdmin)(h.Create))
}
