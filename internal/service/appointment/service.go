package appointment

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/clinicpatient"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const (
	resource = "Appointment"

	DefaultLimit = 100
)

type Service struct {
	repo          repository.AppointmentRepository
	patientRepo   repository.PatientRepository
	userRepo      repository.UserRepository
	tx            repository.Transactor
	clinicPatient *clinicpatient.Service
	notifier      *notification.Service
	now           func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	clinicPatient *clinicpatient.Service,
	notifier *notification.Service,
) *Service {
	return &Service{
		repo:          repo,
		patientRepo:   patientRepo,
		userRepo:      userRepo,
		tx:            tx,
		clinicPatient: clinicPatient,
		notifier:      notifier,
		now:           time.Now,
	}
}

// ListParams are the query options of the appointment listing
type ListParams struct {
	PatientID       *int64
	DoctorID        *int64
	Status          string
	StartDate       *time.Time
	EndDate         *time.Time
	CurrentWeekOnly bool
	Skip            int
	Limit           int
}

func (s *Service) ListAppointments(ctx context.Context, p ListParams) ([]*model.AppointmentDetail, error) {
	filter := model.AppointmentFilter{
		PatientID: p.PatientID,
		DoctorID:  p.DoctorID,
		Status:    p.Status,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Skip:      p.Skip,
		Limit:     p.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if p.CurrentWeekOnly {
		start, end := WeekBounds(s.now())
		filter.StartDate = &start
		filter.EndDate = &end
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return rows, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	appt, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return appt, nil
}

// CreateAppointment books a visit and links the patient to the doctor's
// clinic. The doctor is notified after commit.
func (s *Service) CreateAppointment(ctx context.Context, current *model.User, req model.CreateAppointmentRequest) (*model.AppointmentDetail, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, service.RepoError(err, "Patient")
	}
	doctor, err := s.doctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		PatientID:           req.PatientID,
		DoctorID:            req.DoctorID,
		RegistrarID:         &current.ID,
		AppointmentDatetime: req.AppointmentDatetime,
		Status:              req.Status,
		ServiceType:         req.ServiceType,
		Notes:               req.Notes,
	}
	if appt.Status == "" {
		appt.Status = model.AppointmentStatusScheduled
	}

	var detail *model.AppointmentDetail
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, appt); err != nil {
			return apperrors.Internal(err)
		}
		if doctor != nil && doctor.ClinicID != nil {
			if err := s.clinicPatient.EnsureLinked(ctx, *doctor.ClinicID, appt.PatientID); err != nil {
				return err
			}
		}
		if detail, err = s.repo.GetDetail(ctx, appt.ID); err != nil {
			return service.RepoError(err, resource)
		}
		return s.enqueue(ctx, model.EventAppointmentCreated, detail)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.AppointmentCreated(ctx, detail)
	return detail, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, current *model.User, id int64, req model.UpdateAppointmentRequest) (*model.AppointmentDetail, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if req.DoctorID != nil {
		if _, err := s.doctor(ctx, req.DoctorID); err != nil {
			return nil, err
		}
		appt.DoctorID = req.DoctorID
	}
	if req.AppointmentDatetime != nil {
		appt.AppointmentDatetime = *req.AppointmentDatetime
	}
	completed := false
	if req.Status != nil {
		completed = *req.Status == model.AppointmentStatusCompleted && appt.Status != model.AppointmentStatusCompleted
		appt.Status = *req.Status
	}
	if req.ServiceType != nil {
		appt.ServiceType = req.ServiceType
	}
	if req.Notes != nil {
		appt.Notes = req.Notes
	}

	return s.save(ctx, appt, func(ctx context.Context) error {
		if !completed {
			return nil
		}
		clinicID, err := s.visitClinic(ctx, appt, current)
		if err != nil || clinicID == nil {
			return err
		}
		return s.clinicPatient.MarkVisited(ctx, *clinicID, appt.PatientID, s.now())
	})
}

// CancelAppointment keeps the row and marks it cancelled
func (s *Service) CancelAppointment(ctx context.Context, id int64) error {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.RepoError(err, resource)
	}
	appt.Status = model.AppointmentStatusCancelled
	_, err = s.save(ctx, appt, nil)
	return err
}

func (s *Service) save(ctx context.Context, appt *model.Appointment, after func(ctx context.Context) error) (*model.AppointmentDetail, error) {
	var detail *model.AppointmentDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, appt); err != nil {
			return service.RepoError(err, resource)
		}
		if after != nil {
			if err := after(ctx); err != nil {
				return err
			}
		}
		var err error
		if detail, err = s.repo.GetDetail(ctx, appt.ID); err != nil {
			return service.RepoError(err, resource)
		}
		return s.enqueue(ctx, model.EventAppointmentUpdated, detail)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.AppointmentUpdated(ctx, detail)
	return detail, nil
}

func (s *Service) enqueue(ctx context.Context, eventType string, detail *model.AppointmentDetail) error {
	if err := s.notifier.Enqueue(ctx, eventType, detail); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// doctor loads the assigned doctor. A nil id means no doctor.
func (s *Service) doctor(ctx context.Context, id *int64) (*model.User, error) {
	if id == nil {
		return nil, nil
	}
	doctor, err := s.userRepo.Get(ctx, *id)
	if err != nil {
		return nil, service.RepoError(err, "Doctor")
	}
	return doctor, nil
}

// visitClinic is the doctor's clinic, or the clinic of the user completing
// the appointment when no doctor is assigned.
func (s *Service) visitClinic(ctx context.Context, appt *model.Appointment, current *model.User) (*int64, error) {
	doctor, err := s.doctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor != nil && doctor.ClinicID != nil {
		return doctor.ClinicID, nil
	}
	if current != nil {
		return current.ClinicID, nil
	}
	return nil, nil
}

// WeekBounds returns Monday 00:00 and Sunday 23:59:59 of the week containing
// now, in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
	end := time.Date(y, m, d-offset+6, 23, 59, 59, 0, now.Location())
	return start, end
}
