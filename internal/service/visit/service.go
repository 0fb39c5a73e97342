// Package visit records completed, cancelled and missed visits.
package visit

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const resource = "Visit"

type Service struct {
	repo            repository.VisitRepository
	patientRepo     repository.PatientRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	catalogRepo     repository.ServiceRepository
}

func NewService(
	repo repository.VisitRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	catalogRepo repository.ServiceRepository,
) *Service {
	return &Service{
		repo:            repo,
		patientRepo:     patientRepo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
	}
}

func (s *Service) ListVisits(ctx context.Context, patientID, doctorID *int64, page, size int) (*model.VisitList, error) {
	rows, total, err := s.repo.List(ctx, model.VisitFilter{
		PatientID: patientID,
		DoctorID:  doctorID,
		PageSize:  model.PageSize{Page: page, Size: size},
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if rows == nil {
		rows = []*model.VisitDetail{}
	}
	return &model.VisitList{
		Visits: rows,
		Total:  total,
		Page:   page,
		Size:   size,
		Pages:  model.Pages(total, size),
	}, nil
}

func (s *Service) GetVisit(ctx context.Context, id int64) (*model.VisitDetail, error) {
	v, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return v, nil
}

func (s *Service) CreateVisit(ctx context.Context, req model.CreateVisitRequest) (*model.VisitDetail, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, service.RepoError(err, "Patient")
	}
	if _, err := s.userRepo.Get(ctx, req.DoctorID); err != nil {
		return nil, service.RepoError(err, "Doctor")
	}
	if req.AppointmentID != nil {
		if _, err := s.appointmentRepo.Get(ctx, *req.AppointmentID); err != nil {
			return nil, service.RepoError(err, "Appointment")
		}
	}

	v := &model.Visit{
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		AppointmentID:  req.AppointmentID,
		VisitDate:      req.VisitDate,
		ServiceID:      req.ServiceID,
		ServiceName:    req.ServiceName,
		ServicePrice:   req.ServicePrice,
		Diagnosis:      req.Diagnosis,
		TreatmentNotes: req.TreatmentNotes,
		Status:         req.Status,
	}
	if v.Status == "" {
		v.Status = model.VisitStatusCompleted
	}
	if err := s.snapshot(ctx, v); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.GetVisit(ctx, v.ID)
}

func (s *Service) UpdateVisit(ctx context.Context, id int64, req model.UpdateVisitRequest) (*model.VisitDetail, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if req.ServiceID != nil {
		v.ServiceID = req.ServiceID
		v.ServiceName = nil
		v.ServicePrice = nil
	}
	if req.ServiceName != nil {
		v.ServiceName = req.ServiceName
	}
	if req.ServicePrice != nil {
		v.ServicePrice = req.ServicePrice
	}
	if req.Diagnosis != nil {
		v.Diagnosis = req.Diagnosis
	}
	if req.TreatmentNotes != nil {
		v.TreatmentNotes = req.TreatmentNotes
	}
	if req.Status != nil {
		v.Status = *req.Status
	}
	if err := s.snapshot(ctx, v); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, service.RepoError(err, resource)
	}
	return s.GetVisit(ctx, v.ID)
}

func (s *Service) DeleteVisit(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

// snapshot copies the catalog name and price when the visit names a service
// without them
func (s *Service) snapshot(ctx context.Context, v *model.Visit) error {
	if v.ServiceID == nil || (v.ServiceName != nil && v.ServicePrice != nil) {
		return nil
	}
	svc, err := s.catalogRepo.Get(ctx, *v.ServiceID)
	if err != nil {
		return service.RepoError(err, "Service")
	}
	if v.ServiceName == nil {
		name := svc.Name
		v.ServiceName = &name
	}
	if v.ServicePrice == nil {
		price := svc.Price
		v.ServicePrice = &price
	}
	return nil
}
