package handler

import (
	"encoding/json"
	"net/http"

	"hostelbook/internal/users/service"
	"hostelbook/pkg/auth"
	apperrors "hostelbook/pkg/errors"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, authn *middleware.Authenticator, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Signup", apperrors.InvalidInput("Invalid request body"))
		return
	}

	user, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, httputil.SuccessResponse{
		Message: "User registered successfully",
		Data:    user,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Signup", "operation", "WriteJSON", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Login", apperrors.InvalidInput("Invalid request body"))
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteMessage(w, "Login successful", session); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteMessage", "error", err)
	}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	user, err := h.service.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, "Profile", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Profile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateProfile", apperrors.InvalidInput("Invalid request body"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), principal.UserID, &update)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteMessage(w, "Profile updated successfully", user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteMessage", "error", err)
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	if err := httputil.WriteSuccess(w, users); err != nil {
		h.log.Error("failed to write success response", "handler", "ListUsers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetUser(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUser", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AdminUserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateUser", apperrors.InvalidInput("Invalid request body"))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateUser", err)
		return
	}

	if err := httputil.WriteMessage(w, "User updated successfully", user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateUser", "operation", "WriteMessage", "error", err)
	}
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.PrincipalFrom(r.Context())

	if err := h.service.DeleteUser(r.Context(), principal.UserID, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteUser", err)
		return
	}

	if err := httputil.WriteMessage(w, "User deleted successfully", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteUser", "operation", "WriteMessage", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/auth/signup", h.Signup)
	router.POST("/api/auth/login", h.Login)

	authed := h.authn.Require(model.RoleStudent, model.RoleAdmin)
	router.GET("/api/users/profile/me", authed(h.Profile))
	router.PUT("/api/users/profile/me", authed(h.UpdateProfile))

	admin := h.authn.Require(model.RoleAdmin)
	router.GET("/api/users/admin", admin(h.ListUsers))
	router.GET("/api/users/admin/:id", admin(h.GetUser))
	router.PUT("/api/users/admin/:id", admin(h.UpdateUser))
	router.DELETE("/api/users/admin/:id", admin(h.DeleteUser))
}
