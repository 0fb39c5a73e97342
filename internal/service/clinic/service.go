package clinic

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const resource = "Clinic"

type Service struct {
	repo repository.ClinicRepository
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListClinics(ctx context.Context, skip, limit int) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return clinics, nil
}

func (s *Service) GetClinic(ctx context.Context, id int64) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return clinic, nil
}

// CurrentClinic returns the clinic the user belongs to
func (s *Service) CurrentClinic(ctx context.Context, user *model.User) (*model.Clinic, error) {
	if user.ClinicID == nil {
		return nil, apperrors.NotFound(resource, nil)
	}
	return s.GetClinic(ctx, *user.ClinicID)
}

func (s *Service) CreateClinic(ctx context.Context, req model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Contacts:    req.Contacts,
		IsActive:    true,
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, apperrors.Internal(err)
	}
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id int64, req model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Description != nil {
		clinic.Description = req.Description
	}
	if req.Address != nil {
		clinic.Address = req.Address
	}
	if req.Contacts != nil {
		clinic.Contacts = req.Contacts
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, service.RepoError(err, resource)
	}
	return clinic, nil
}

// DeleteClinic deactivates the clinic. Rows referencing it are kept.
func (s *Service) DeleteClinic(ctx context.Context, id int64) error {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return err
	}
	clinic.IsActive = false
	if err := s.repo.Update(ctx, clinic); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}
