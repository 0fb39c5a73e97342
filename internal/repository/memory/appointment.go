package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.nextID()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r appointmentRepo) detail(a model.Appointment) *model.AppointmentDetail {
	d := &model.AppointmentDetail{Appointment: a}
	if p, ok := r.s.patients[a.PatientID]; ok {
		d.PatientName = strPtr(p.FullName)
		d.PatientPhone = strPtr(p.Phone)
		d.PatientIIN = strPtr(p.IIN)
	}
	if a.DoctorID != nil {
		if u, ok := r.s.users[*a.DoctorID]; ok {
			d.DoctorName = strPtr(u.FullName)
		}
	}
	return d
}

func (r appointmentRepo) GetDetail(_ context.Context, id int64) (*model.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(a), nil
}

func (r appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = r.s.now()
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) List(_ context.Context, f model.AppointmentFilter) ([]*model.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.AppointmentDetail{}
	for _, a := range r.s.appointments {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && (a.DoctorID == nil || *a.DoctorID != *f.DoctorID) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.StartDate != nil && a.AppointmentDatetime.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && a.AppointmentDatetime.After(*f.EndDate) {
			continue
		}
		out = append(out, r.detail(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDatetime.Before(out[j].AppointmentDatetime)
	})
	return page(out, f.Skip, f.Limit), nil
}
