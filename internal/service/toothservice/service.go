// Package toothservice manages per-tooth service assignments of a treatment plan.
package toothservice

import (
	"context"
	"strconv"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const resource = "Tooth service"

type Service struct {
	repo     repository.ToothServiceRepository
	planRepo repository.TreatmentPlanRepository
}

func NewService(repo repository.ToothServiceRepository, planRepo repository.TreatmentPlanRepository) *Service {
	return &Service{repo: repo, planRepo: planRepo}
}

func (s *Service) CreateToothService(ctx context.Context, req model.CreateToothServiceRequest) (*model.ToothService, error) {
	if _, err := s.planRepo.Get(ctx, req.TreatmentPlanID); err != nil {
		return nil, service.RepoError(err, "Treatment plan")
	}
	ts := &model.ToothService{
		TreatmentPlanID: req.TreatmentPlanID,
		ToothID:         req.ToothID,
		ServiceIDs:      model.Int64List(req.ServiceIDs),
		ServiceStatuses: withPending(req.ServiceIDs, req.ServiceStatuses),
	}
	if err := s.repo.Create(ctx, ts); err != nil {
		return nil, apperrors.Internal(err)
	}
	return ts, nil
}

func (s *Service) ListByPlan(ctx context.Context, planID int64) ([]*model.ToothService, error) {
	rows, err := s.repo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return rows, nil
}

func (s *Service) UpdateToothService(ctx context.Context, id int64, req model.UpdateToothServiceRequest) (*model.ToothService, error) {
	ts, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if req.ServiceIDs != nil {
		ts.ServiceIDs = model.Int64List(req.ServiceIDs)
	}
	if req.ServiceStatuses != nil {
		ts.ServiceStatuses = req.ServiceStatuses
	}
	ts.ServiceStatuses = withPending(ts.ServiceIDs, ts.ServiceStatuses)

	if err := s.repo.Update(ctx, ts); err != nil {
		return nil, service.RepoError(err, resource)
	}
	return ts, nil
}

func (s *Service) DeleteToothService(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

// DeleteByPlan removes every assignment of the plan and returns how many
func (s *Service) DeleteByPlan(ctx context.Context, planID int64) (int64, error) {
	n, err := s.repo.DeleteByPlan(ctx, planID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// withPending gives every assigned service a status, defaulting to pending
func withPending(ids []int64, statuses model.StatusMap) model.StatusMap {
	out := make(model.StatusMap, len(ids))
	for k, v := range statuses {
		out[k] = v
	}
	for _, id := range ids {
		key := strconv.FormatInt(id, 10)
		if _, ok := out[key]; !ok {
			out[key] = model.ToothServicePending
		}
	}
	return out
}
