package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type visitRepo struct{ s *Store }

func (r visitRepo) Create(_ context.Context, v *model.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.ID = r.s.nextID()
	v.CreatedAt = r.s.now()
	v.UpdatedAt = v.CreatedAt
	r.s.visits[v.ID] = *v
	return nil
}

func (r visitRepo) Get(_ context.Context, id int64) (*model.Visit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r visitRepo) detail(v model.Visit) *model.VisitDetail {
	d := &model.VisitDetail{Visit: v}
	if p, ok := r.s.patients[v.PatientID]; ok {
		d.PatientName = strPtr(p.FullName)
	}
	if u, ok := r.s.users[v.DoctorID]; ok {
		d.DoctorName = strPtr(u.FullName)
	}
	if v.AppointmentID != nil {
		if a, ok := r.s.appointments[*v.AppointmentID]; ok {
			at := a.AppointmentDatetime
			d.AppointmentDatetime = &at
		}
	}
	return d
}

func (r visitRepo) GetDetail(_ context.Context, id int64) (*model.VisitDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(v), nil
}

func (r visitRepo) Update(_ context.Context, v *model.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.visits[v.ID]; !ok {
		return repository.ErrNotFound
	}
	v.UpdatedAt = r.s.now()
	r.s.visits[v.ID] = *v
	return nil
}

func (r visitRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.visits[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.visits, id)
	return nil
}

func (r visitRepo) List(_ context.Context, f model.VisitFilter) ([]*model.VisitDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.VisitDetail{}
	for _, v := range r.s.visits {
		if f.PatientID != nil && v.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && v.DoctorID != *f.DoctorID {
			continue
		}
		out = append(out, r.detail(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	if f.Size <= 0 {
		return out, len(out), nil
	}
	return page(out, f.Offset(), f.Size), len(out), nil
}
