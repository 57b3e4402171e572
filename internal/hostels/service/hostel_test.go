package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	hostelserrors "hostelbook/internal/hostels/errors"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"
	"hostelbook/pkg/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockHostelRepository struct {
	hostels map[string]*model.Hostel
	findErr error
}

func (m *mockHostelRepository) Create(_ context.Context, hostel *model.Hostel) error {
	for _, h := range m.hostels {
		if h.Name == hostel.Name {
			return hostelserrors.ErrDuplicateName
		}
	}
	hostel.ID = primitive.NewObjectID().Hex()
	m.hostels[hostel.ID] = hostel
	return nil
}

func (m *mockHostelRepository) FindByID(_ context.Context, id string) (*model.Hostel, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", hostelserrors.ErrInvalidID, id)
	}
	h, ok := m.hostels[id]
	if !ok {
		return nil, hostelserrors.ErrNotFound
	}
	return h, nil
}

func (m *mockHostelRepository) FindAll(context.Context) ([]*model.Hostel, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	all := []*model.Hostel{}
	for _, h := range m.hostels {
		all = append(all, h)
	}
	return all, nil
}

func newService() (HostelService, *mockHostelRepository) {
	log := logger.Discard()
	repo := &mockHostelRepository{hostels: map[string]*model.Hostel{}}
	return NewHostelService(repo, validation.New(log), &config.Config{Log: log}), repo
}

func TestCreate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	hostel := &model.Hostel{Name: "  Unity   Hall ", Location: "North Campus", Capacity: 120}
	if err := svc.Create(ctx, hostel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hostel.Name != "Unity Hall" {
		t.Errorf("expected normalized name, got %q", hostel.Name)
	}
	if hostel.ID == "" {
		t.Error("expected an id to be assigned")
	}

	err := svc.Create(ctx, &model.Hostel{Name: "Unity Hall", Location: "South", Capacity: 10})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT for duplicate name, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService()

	err := svc.Create(context.Background(), &model.Hostel{Name: "X", Capacity: 0})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details := apperrors.AsAppError(err).Details
	for _, field := range []string{"name", "location", "capacity"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected detail for %s, got %v", field, details)
		}
	}
}

func TestGetByID(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	hostel := &model.Hostel{Name: "Unity Hall", Location: "North Campus", Capacity: 120}
	if err := svc.Create(ctx, hostel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetByID(ctx, hostel.ID)
	if err != nil || got.Name != "Unity Hall" {
		t.Errorf("expected hostel, got %+v, %v", got, err)
	}
	if _, err := svc.GetByID(ctx, primitive.NewObjectID().Hex()); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "bad"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetAll_StorageFailure(t *testing.T) {
	svc, repo := newService()
	repo.findErr = errors.New("connection reset")

	if _, err := svc.GetAll(context.Background()); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}
