package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostelbook/pkg/auth"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/middleware"
	"hostelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, studentID, roomID string) (*model.Booking, error)
	getActiveFunc    func(ctx context.Context, studentID string) (*model.BookingDetails, error)
	cancelFunc       func(ctx context.Context, bookingID, studentID string) error
	updateStatusFunc func(ctx context.Context, bookingID, action, hostelID string) (*model.BookingDetails, error)
	listHostelFunc   func(ctx context.Context, hostelID string) ([]*model.BookingDetails, error)
}

func (m *mockBookingService) Create(ctx context.Context, studentID, roomID string) (*model.Booking, error) {
	return m.createFunc(ctx, studentID, roomID)
}

func (m *mockBookingService) GetActive(ctx context.Context, studentID string) (*model.BookingDetails, error) {
	return m.getActiveFunc(ctx, studentID)
}

func (m *mockBookingService) Cancel(ctx context.Context, bookingID, studentID string) error {
	return m.cancelFunc(ctx, bookingID, studentID)
}

func (m *mockBookingService) ListPendingForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error) {
	return m.listHostelFunc(ctx, hostelID)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, bookingID, action, hostelID string) (*model.BookingDetails, error) {
	return m.updateStatusFunc(ctx, bookingID, action, hostelID)
}

func (m *mockBookingService) ListForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error) {
	return m.listHostelFunc(ctx, hostelID)
}

func (m *mockBookingService) ListForStudent(ctx context.Context, studentID string) ([]*model.BookingDetails, error) {
	return []*model.BookingDetails{}, nil
}

func (m *mockBookingService) ReleaseForStudent(context.Context, string) error {
	return nil
}

const testSecret = "handler-test-secret-0123456789"

func newTestRouter(t *testing.T, svc *mockBookingService) (*httprouter.Router, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	h := NewBookingHandler(svc, middleware.NewAuthenticator(tokens, logger.Discard()), logger.Discard())
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router, tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, p auth.Principal) string {
	t.Helper()
	token, err := tokens.Issue(p)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token.Value
}

func TestCreate_UsesCallerAndRoomFromPath(t *testing.T) {
	var gotStudent, gotRoom string
	svc := &mockBookingService{
		createFunc: func(_ context.Context, studentID, roomID string) (*model.Booking, error) {
			gotStudent, gotRoom = studentID, roomID
			return &model.Booking{ID: "b1", StudentID: studentID, RoomID: roomID, Status: model.BookingStatusPending}, nil
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/book/r42", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "s1", Role: model.RoleStudent}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStudent != "s1" || gotRoom != "r42" {
		t.Errorf("service called with student=%q room=%q", gotStudent, gotRoom)
	}
}

func TestCreate_AdminIsForbidden(t *testing.T) {
	router, tokens := newTestRouter(t, &mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/book/r42", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "a1", Role: model.RoleAdmin, HostelID: "h1"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCreate_ConflictBody(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(context.Context, string, string) (*model.Booking, error) {
			return nil, apperrors.Conflict("You already have a pending booking for Room 101.").
				WithDetails(map[string]any{"roomNumber": "101", "status": "pending"})
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings/book/r2", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "s1", Role: model.RoleStudent}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Code != apperrors.CodeConflict || body.Details["roomNumber"] != "101" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestStatus_NoActiveBooking(t *testing.T) {
	svc := &mockBookingService{
		getActiveFunc: func(context.Context, string) (*model.BookingDetails, error) {
			return nil, nil
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/status", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "s1", Role: model.RoleStudent}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data model.ActiveBookingStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Data.HasActiveBooking || body.Data.ActiveBooking != nil {
		t.Errorf("expected no active booking, got %+v", body.Data)
	}
}

func TestCancel_PassesBookingAndCaller(t *testing.T) {
	var gotBooking, gotStudent string
	svc := &mockBookingService{
		cancelFunc: func(_ context.Context, bookingID, studentID string) error {
			gotBooking, gotStudent = bookingID, studentID
			return nil
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/b7/cancel", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "s9", Role: model.RoleStudent}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotBooking != "b7" || gotStudent != "s9" {
		t.Errorf("service called with booking=%q student=%q", gotBooking, gotStudent)
	}
}

func TestUpdateStatus_UsesAdminHostel(t *testing.T) {
	var gotAction, gotHostel string
	svc := &mockBookingService{
		updateStatusFunc: func(_ context.Context, bookingID, action, hostelID string) (*model.BookingDetails, error) {
			gotAction, gotHostel = action, hostelID
			return &model.BookingDetails{Booking: model.Booking{ID: bookingID, Status: model.BookingStatusApproved}}, nil
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPut, "/api/bookings/admin/b1/approve", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "a1", Role: model.RoleAdmin, HostelID: "hx"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotAction != model.ActionApprove || gotHostel != "hx" {
		t.Errorf("service called with action=%q hostel=%q", gotAction, gotHostel)
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &mockBookingService{})

	for _, path := range []string{"/api/bookings/admin/pending", "/api/bookings/admin/all"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestPending_ScopedToAdminHostel(t *testing.T) {
	var gotHostel string
	svc := &mockBookingService{
		listHostelFunc: func(_ context.Context, hostelID string) ([]*model.BookingDetails, error) {
			gotHostel = hostelID
			return []*model.BookingDetails{}, nil
		},
	}
	router, tokens := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/admin/pending", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.Principal{UserID: "a1", Role: model.RoleAdmin, HostelID: "hx"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotHostel != "hx" {
		t.Errorf("expected 200 scoped to hx, got %d scoped to %q", rec.Code, gotHostel)
	}
}
