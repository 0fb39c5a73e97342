// Package memory implements the repository interfaces in process memory.
// Services are tested against it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

// Store holds every table. Repositories created from one Store share data.
type Store struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	clinics        map[int64]model.Clinic
	users          map[int64]model.User
	patients       map[int64]model.Patient
	clinicPatients map[int64]model.ClinicPatient
	services       map[int64]model.Service
	appointments   map[int64]model.Appointment
	plans          map[int64]model.TreatmentPlan
	planServices   map[int64]model.TreatmentPlanService
	orders         map[int64]model.TreatmentOrder
	orderServices  map[int64]model.TreatmentOrderService
	toothServices  map[int64]model.ToothService
	visits         map[int64]model.Visit
	outbox         map[uuid.UUID]model.OutboxEvent

	// TxCount counts WithinTx calls
	TxCount int
}

func NewStore() *Store {
	return &Store{
		now:            time.Now,
		clinics:        map[int64]model.Clinic{},
		users:          map[int64]model.User{},
		patients:       map[int64]model.Patient{},
		clinicPatients: map[int64]model.ClinicPatient{},
		services:       map[int64]model.Service{},
		appointments:   map[int64]model.Appointment{},
		plans:          map[int64]model.TreatmentPlan{},
		planServices:   map[int64]model.TreatmentPlanService{},
		orders:         map[int64]model.TreatmentOrder{},
		orderServices:  map[int64]model.TreatmentOrderService{},
		toothServices:  map[int64]model.ToothService{},
		visits:         map[int64]model.Visit{},
		outbox:         map[uuid.UUID]model.OutboxEvent{},
	}
}

// SetClock replaces the time source used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Repositories bundles every repository over one Store
type Repositories struct {
	Tx             repository.Transactor
	Clinics        repository.ClinicRepository
	Users          repository.UserRepository
	Patients       repository.PatientRepository
	ClinicPatients repository.ClinicPatientRepository
	Services       repository.ServiceRepository
	Appointments   repository.AppointmentRepository
	Plans          repository.TreatmentPlanRepository
	Orders         repository.TreatmentOrderRepository
	ToothServices  repository.ToothServiceRepository
	Visits         repository.VisitRepository
	Outbox         repository.OutboxRepository
}

func (s *Store) Repositories() *Repositories {
	return &Repositories{
		Tx:             transactor{s},
		Clinics:        clinicRepo{s},
		Users:          userRepo{s},
		Patients:       patientRepo{s},
		ClinicPatients: clinicPatientRepo{s},
		Services:       serviceRepo{s},
		Appointments:   appointmentRepo{s},
		Plans:          planRepo{s},
		Orders:         orderRepo{s},
		ToothServices:  toothServiceRepo{s},
		Visits:         visitRepo{s},
		Outbox:         outboxRepo{s},
	}
}

// transactor runs fn directly. Writes are not rolled back on error.
type transactor struct{ s *Store }

func (t transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	t.s.TxCount++
	t.s.mu.Unlock()
	return fn(ctx)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// servicesExist reports whether every id is in the catalog. Callers hold mu.
func (s *Store) servicesExist(ids ...int64) bool {
	for _, id := range ids {
		if _, ok := s.services[id]; !ok {
			return false
		}
	}
	return true
}

// userReferenced reports whether any row still points at the user. Callers hold mu.
func (s *Store) userReferenced(id int64) bool {
	for _, a := range s.appointments {
		if (a.DoctorID != nil && *a.DoctorID == id) || (a.RegistrarID != nil && *a.RegistrarID == id) {
			return true
		}
	}
	for _, p := range s.plans {
		if p.DoctorID == id {
			return true
		}
	}
	for _, o := range s.orders {
		if o.CreatedByID == id {
			return true
		}
	}
	for _, v := range s.visits {
		if v.DoctorID == id {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}
