package service

import (
	"context"
	"errors"

	hostelserrors "hostelbook/internal/hostels/errors"
	"hostelbook/internal/hostels/repository"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/model"
	"hostelbook/pkg/sanitizer"
	"hostelbook/pkg/validation"
)

type HostelService interface {
	Create(ctx context.Context, hostel *model.Hostel) error
	GetByID(ctx context.Context, id string) (*model.Hostel, error)
	GetAll(ctx context.Context) ([]*model.Hostel, error)
}

type hostelService struct {
	repo      repository.HostelRepository
	validator *validation.Validator
	cfg       *config.Config
}

func NewHostelService(repo repository.HostelRepository, validator *validation.Validator, cfg *config.Config) HostelService {
	return &hostelService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hostelService) Create(ctx context.Context, hostel *model.Hostel) error {
	hostel.ID = ""
	hostel.Name = sanitizer.TrimAndNormalize(hostel.Name)
	hostel.Location = sanitizer.TrimAndNormalize(hostel.Location)

	if err := s.validator.Check(hostel, "Invalid hostel input"); err != nil {
		s.cfg.Log.Warn("Hostel validation failed", "name", hostel.Name, "error", err)
		return err
	}

	if err := s.repo.Create(ctx, hostel); err != nil {
		if errors.Is(err, hostelserrors.ErrDuplicateName) {
			return apperrors.Conflict("Hostel name already exists").
				WithDetails(map[string]any{"name": hostel.Name})
		}
		s.cfg.Log.Error("Failed to create hostel", "name", hostel.Name, "error", err)
		return apperrors.Internal("Failed to create hostel", err)
	}

	s.cfg.Log.Info("Hostel created successfully", "id", hostel.ID, "name", hostel.Name)
	return nil
}

func (s *hostelService) GetByID(ctx context.Context, id string) (*model.Hostel, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hostel ID cannot be empty")
	}

	hostel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, hostelserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Hostel", id)
		case errors.Is(err, hostelserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid hostel ID format")
		}
		s.cfg.Log.Error("Failed to retrieve hostel", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve hostel", err)
	}
	return hostel, nil
}

func (s *hostelService) GetAll(ctx context.Context) ([]*model.Hostel, error) {
	hostels, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list hostels", "error", err)
		return nil, apperrors.Internal("Failed to retrieve hostels", err)
	}
	return hostels, nil
}
