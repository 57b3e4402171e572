package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Room not found"},
			expected: "NOT_FOUND: Room not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "Failed to create booking",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: Failed to create booking (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the wrapped error")
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "b1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad action"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("token missing"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("Access denied"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("Room is already occupied"), CodeConflict, http.StatusBadRequest},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusServiceUnavailable},
		{"too many requests", TooManyRequests("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Room", "12345")

	if err.Message != "Room not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["id"] != "12345" || err.Details["resource"] != "Room" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	wrapped := fmt.Errorf("transaction failed: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should find an AppError inside a wrapped chain")
	}

	regularErr := errors.New("regular error")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal || result.Err != regularErr {
		t.Errorf("AsAppError() should wrap plain errors as internal, got %+v", result)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("taken"))

	if !HasCode(err, CodeConflict) {
		t.Errorf("expected HasCode to match CONFLICT")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("expected HasCode not to match NOT_FOUND")
	}
	if HasCode(errors.New("plain"), CodeConflict) {
		t.Errorf("plain errors carry no code")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := Conflict("You already have a pending booking").WithDetails(map[string]any{"roomNumber": "101"})
	body := string(err.ToJSON())

	for _, want := range []string{`"code":"CONFLICT"`, `"roomNumber":"101"`, "pending booking"} {
		if !strings.Contains(body, want) {
			t.Errorf("ToJSON() = %s, missing %s", body, want)
		}
	}
}
