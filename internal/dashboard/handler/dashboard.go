package handler

import (
	"net/http"

	"hostelbook/internal/dashboard/service"
	"hostelbook/pkg/auth"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, authn *middleware.Authenticator, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, authn: authn, log: log}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	stats, err := h.service.Stats(r.Context(), principal.HostelID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/admin/dashboard", h.authn.Require(model.RoleAdmin)(h.Get))
}
