package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"hostelbook/pkg/auth"
	apperrors "hostelbook/pkg/errors"
	httputil "hostelbook/pkg/http"
	"hostelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Authenticator guards httprouter handles with bearer-token checks.
type Authenticator struct {
	verifier TokenVerifier
	log      *logger.Logger
}

func NewAuthenticator(verifier TokenVerifier, log *logger.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		log:      log,
	}
}

// Require verifies the bearer token and, when roles are given, the caller's role.
// The principal is stored on the request context for the wrapped handle.
func (a *Authenticator) Require(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw := bearerToken(r)
			if raw == "" {
				a.reject(w, r, apperrors.Unauthorized("No token, authorization denied"))
				return
			}

			principal, err := a.verifier.Verify(raw)
			if err != nil {
				message := "Token is not valid"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "Token has expired"
				}
				a.log.Warn("Bearer token rejected",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				a.reject(w, r, apperrors.Unauthorized(message))
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, principal.Role) {
				a.log.Warn("Role not permitted",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"user_id", principal.UserID,
					"role", principal.Role,
				)
				a.reject(w, r, apperrors.Forbidden("Access denied"))
				return
			}

			if principal.IsAdmin() && principal.HostelID == "" {
				a.reject(w, r, apperrors.Forbidden("Admin is not assigned to a hostel"))
				return
			}

			next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)), ps)
		}
	}
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	if writeErr := httputil.WriteError(w, appErr); writeErr != nil {
		a.log.Error("failed to write error response",
			"middleware", "Authenticator",
			"request_id", RequestIDFrom(r.Context()),
			"error", writeErr,
		)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
