// Package clinicpatient manages the links between shared patients and clinics.
package clinicpatient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const (
	resource    = "Clinic patient"
	searchLimit = 20
)

type Service struct {
	repo        repository.ClinicPatientRepository
	patientRepo repository.PatientRepository
	now         func() time.Time
}

func NewService(repo repository.ClinicPatientRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		now:         time.Now,
	}
}

func (s *Service) ListClinicPatients(ctx context.Context, clinicID int64, doctorID *int64, search string, page, size int) (*model.ClinicPatientList, error) {
	rows, total, err := s.repo.List(ctx, model.ClinicPatientFilter{
		ClinicID: clinicID,
		DoctorID: doctorID,
		Search:   strings.TrimSpace(search),
		PageSize: model.PageSize{Page: page, Size: size},
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if rows == nil {
		rows = []*model.ClinicPatientDetail{}
	}
	return &model.ClinicPatientList{Patients: rows, Total: total, Page: page, Size: size}, nil
}

func (s *Service) DoctorStats(ctx context.Context, clinicID int64) ([]*model.DoctorStat, error) {
	stats, err := s.repo.DoctorStats(ctx, clinicID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

// AddPatient links a patient to the clinic. An inactive link is reactivated.
func (s *Service) AddPatient(ctx context.Context, clinicID, patientID int64) (*model.ClinicPatientDetail, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, service.RepoError(err, "Patient")
	}

	existing, err := s.repo.GetByClinicAndPatient(ctx, clinicID, patientID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}
	if existing != nil && existing.IsActive {
		return nil, apperrors.BadRequest("Patient already added to this clinic", nil)
	}

	id, err := s.link(ctx, existing, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// EnsureLinked makes sure the patient has an active link to the clinic.
// Appointments call it to bind patients to the doctor's clinic.
func (s *Service) EnsureLinked(ctx context.Context, clinicID, patientID int64) error {
	existing, err := s.repo.GetByClinicAndPatient(ctx, clinicID, patientID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Internal(err)
	}
	if existing != nil && existing.IsActive {
		return nil
	}
	_, err = s.link(ctx, existing, clinicID, patientID)
	return err
}

func (s *Service) link(ctx context.Context, existing *model.ClinicPatient, clinicID, patientID int64) (int64, error) {
	if existing != nil {
		existing.IsActive = true
		existing.LastVisitDate = nil
		if err := s.repo.Update(ctx, existing); err != nil {
			return 0, service.RepoError(err, resource)
		}
		return existing.ID, nil
	}

	cp := &model.ClinicPatient{
		ClinicID:       clinicID,
		PatientID:      patientID,
		FirstVisitDate: s.now(),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, cp); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, apperrors.BadRequest("Patient already added to this clinic", err)
		}
		return 0, apperrors.Internal(err)
	}
	return cp.ID, nil
}

func (s *Service) UpdateClinicPatient(ctx context.Context, clinicID, id int64, req model.UpdateClinicPatientRequest) (*model.ClinicPatientDetail, error) {
	cp, err := s.get(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if req.LastVisitDate != nil {
		cp.LastVisitDate = req.LastVisitDate
	}
	if req.IsActive != nil {
		cp.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, service.RepoError(err, resource)
	}
	return s.detail(ctx, cp.ID)
}

// RemovePatient deactivates the link, keeping history
func (s *Service) RemovePatient(ctx context.Context, clinicID, id int64) error {
	cp, err := s.get(ctx, clinicID, id)
	if err != nil {
		return err
	}
	cp.IsActive = false
	if err := s.repo.Update(ctx, cp); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

func (s *Service) SearchPatients(ctx context.Context, clinicID int64, query string) ([]*model.PatientSearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.BadRequest("Search query is required", nil)
	}
	hits, err := s.repo.SearchPatients(ctx, clinicID, query, searchLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return hits, nil
}

// MarkVisited records a completed visit on the clinic link
func (s *Service) MarkVisited(ctx context.Context, clinicID, patientID int64, at time.Time) error {
	if err := s.repo.SetLastVisit(ctx, clinicID, patientID, at); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, clinicID, id int64) (*model.ClinicPatient, error) {
	cp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if cp.ClinicID != clinicID {
		return nil, apperrors.NotFound(resource, nil)
	}
	return cp, nil
}

func (s *Service) detail(ctx context.Context, id int64) (*model.ClinicPatientDetail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return d, nil
}
