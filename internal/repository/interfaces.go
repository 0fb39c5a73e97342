package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on unique constraint violations
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey is returned when a write references a missing row or a
	// delete would orphan rows that reference the target
	ErrForeignKey = errors.New("foreign key violation")
)

// Unique constraints named in ErrDuplicate errors
const (
	ConstraintPatientPhone = "patients_phone_key"
	ConstraintPatientIIN   = "patients_iin_key"
)

// All repository interfaces in one file
type (
	// Transactor runs fn in a transaction carried by the context passed to it.
	// Repository calls made with that context join the transaction.
	Transactor interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id int64) (*model.Clinic, error)
		GetByName(ctx context.Context, name string) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context, skip, limit int) ([]*model.Clinic, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByPhone(ctx context.Context, phone string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByIIN(ctx context.Context, iin string) (*model.Patient, error)
		GetByPhone(ctx context.Context, phones ...string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, int, error)
		SearchByPhone(ctx context.Context, phone string, limit int) ([]*model.Patient, error)
		SearchByName(ctx context.Context, name string, limit int) ([]*model.Patient, error)
	}

	ClinicPatientRepository interface {
		Create(ctx context.Context, cp *model.ClinicPatient) error
		Get(ctx context.Context, id int64) (*model.ClinicPatient, error)
		GetByClinicAndPatient(ctx context.Context, clinicID, patientID int64) (*model.ClinicPatient, error)
		GetDetail(ctx context.Context, id int64) (*model.ClinicPatientDetail, error)
		Update(ctx context.Context, cp *model.ClinicPatient) error
		List(ctx context.Context, filter model.ClinicPatientFilter) ([]*model.ClinicPatientDetail, int, error)
		DoctorStats(ctx context.Context, clinicID int64) ([]*model.DoctorStat, error)
		SearchPatients(ctx context.Context, clinicID int64, query string, limit int) ([]*model.PatientSearchHit, error)
		SetLastVisit(ctx context.Context, clinicID, patientID int64, at time.Time) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id int64) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		List(ctx context.Context, filter model.ServiceFilter) ([]*model.Service, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		GetDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentDetail, error)
	}

	TreatmentPlanRepository interface {
		Create(ctx context.Context, plan *model.TreatmentPlan) error
		Get(ctx context.Context, id int64) (*model.TreatmentPlan, error)
		GetDetail(ctx context.Context, id int64) (*model.TreatmentPlanDetail, error)
		FindByPatientAndClinic(ctx context.Context, patientID, clinicID int64) (*model.TreatmentPlan, error)
		Update(ctx context.Context, plan *model.TreatmentPlan) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.TreatmentPlanFilter) ([]*model.TreatmentPlanDetail, error)
		ListServices(ctx context.Context, planID int64) ([]*model.TreatmentPlanService, error)
		ListServicesByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentPlanService, error)
		AddService(ctx context.Context, service *model.TreatmentPlanService) error
		ReplaceServices(ctx context.Context, planID int64, services []*model.TreatmentPlanService) error
	}

	TreatmentOrderRepository interface {
		Create(ctx context.Context, order *model.TreatmentOrder, services []*model.TreatmentOrderService) error
		Get(ctx context.Context, id int64) (*model.TreatmentOrder, error)
		GetDetail(ctx context.Context, id int64) (*model.TreatmentOrderDetail, error)
		Update(ctx context.Context, order *model.TreatmentOrder) error
		ReplaceServices(ctx context.Context, orderID int64, services []*model.TreatmentOrderService) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.TreatmentOrderFilter) ([]*model.TreatmentOrderDetail, error)
	}

	ToothServiceRepository interface {
		Create(ctx context.Context, ts *model.ToothService) error
		Get(ctx context.Context, id int64) (*model.ToothService, error)
		Update(ctx context.Context, ts *model.ToothService) error
		Delete(ctx context.Context, id int64) error
		ListByPlan(ctx context.Context, planID int64) ([]*model.ToothService, error)
		DeleteByPlan(ctx context.Context, planID int64) (int64, error)
	}

	VisitRepository interface {
		Create(ctx context.Context, visit *model.Visit) error
		Get(ctx context.Context, id int64) (*model.Visit, error)
		GetDetail(ctx context.Context, id int64) (*model.VisitDetail, error)
		Update(ctx context.Context, visit *model.Visit) error
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context, filter model.VisitFilter) ([]*model.VisitDetail, int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
