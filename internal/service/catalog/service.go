// Package catalog manages the clinic service catalog.
package catalog

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const resource = "Service"

type Service struct {
	repo repository.ServiceRepository
}

func NewService(repo repository.ServiceRepository) *Service {
	return &Service{repo: repo}
}

// ListServices returns the catalog visible to clinicID. Global entries are
// always included.
func (s *Service) ListServices(ctx context.Context, clinicID *int64, activeOnly bool, skip, limit int) ([]*model.Service, error) {
	services, err := s.repo.List(ctx, model.ServiceFilter{
		ClinicID:   clinicID,
		ActiveOnly: activeOnly,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return services, nil
}

func (s *Service) GetService(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return svc, nil
}

func (s *Service) CreateService(ctx context.Context, current *model.User, req model.CreateServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
		ClinicID:    req.ClinicID,
	}
	if svc.ClinicID == nil {
		svc.ClinicID = current.ClinicID
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id int64, req model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Description != nil {
		svc.Description = req.Description
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, service.RepoError(err, resource)
	}
	return svc, nil
}

// DeleteService deactivates the entry. Plans and orders keep their snapshots.
func (s *Service) DeleteService(ctx context.Context, id int64) error {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return err
	}
	svc.IsActive = false
	if err := s.repo.Update(ctx, svc); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}
