package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type clinicPatientRepo struct{ s *Store }

func (r clinicPatientRepo) Create(_ context.Context, cp *model.ClinicPatient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.clinicPatients {
		if other.ClinicID == cp.ClinicID && other.PatientID == cp.PatientID {
			return repository.ErrDuplicate
		}
	}
	cp.ID = r.s.nextID()
	cp.CreatedAt = r.s.now()
	cp.UpdatedAt = cp.CreatedAt
	r.s.clinicPatients[cp.ID] = *cp
	return nil
}

func (r clinicPatientRepo) Get(_ context.Context, id int64) (*model.ClinicPatient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp, ok := r.s.clinicPatients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cp, nil
}

func (r clinicPatientRepo) GetByClinicAndPatient(_ context.Context, clinicID, patientID int64) (*model.ClinicPatient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cp := range r.s.clinicPatients {
		if cp.ClinicID == clinicID && cp.PatientID == patientID {
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r clinicPatientRepo) detail(cp model.ClinicPatient) *model.ClinicPatientDetail {
	d := &model.ClinicPatientDetail{ClinicPatient: cp}
	if p, ok := r.s.patients[cp.PatientID]; ok {
		d.PatientName = p.FullName
		d.PatientPhone = p.Phone
		d.PatientIIN = p.IIN
		d.PatientBirthDate = p.BirthDate
	}
	if c, ok := r.s.clinics[cp.ClinicID]; ok {
		d.ClinicName = c.Name
	}
	return d
}

func (r clinicPatientRepo) GetDetail(_ context.Context, id int64) (*model.ClinicPatientDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp, ok := r.s.clinicPatients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(cp), nil
}

func (r clinicPatientRepo) Update(_ context.Context, cp *model.ClinicPatient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clinicPatients[cp.ID]; !ok {
		return repository.ErrNotFound
	}
	cp.UpdatedAt = r.s.now()
	r.s.clinicPatients[cp.ID] = *cp
	return nil
}

func (r clinicPatientRepo) hasAppointmentWith(patientID, doctorID int64) bool {
	for _, a := range r.s.appointments {
		if a.PatientID == patientID && a.DoctorID != nil && *a.DoctorID == doctorID {
			return true
		}
	}
	return false
}

func (r clinicPatientRepo) List(_ context.Context, f model.ClinicPatientFilter) ([]*model.ClinicPatientDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.ClinicPatientDetail{}
	for _, cp := range r.s.clinicPatients {
		if cp.ClinicID != f.ClinicID || !cp.IsActive {
			continue
		}
		if f.DoctorID != nil && !r.hasAppointmentWith(cp.PatientID, *f.DoctorID) {
			continue
		}
		d := r.detail(cp)
		if f.Search != "" && !contains(d.PatientName, f.Search) && !contains(d.PatientPhone, f.Search) && !contains(d.PatientIIN, f.Search) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastVisitDate, out[j].LastVisitDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Offset(), f.Size), len(out), nil
}

func (r clinicPatientRepo) DoctorStats(_ context.Context, clinicID int64) ([]*model.DoctorStat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.DoctorStat{}
	for _, u := range r.s.users {
		if !u.IsActive || !u.InClinic(&clinicID) || !u.HasRole(model.RoleDoctor, model.RoleNurse) {
			continue
		}
		patients := map[int64]struct{}{}
		for _, a := range r.s.appointments {
			if a.DoctorID != nil && *a.DoctorID == u.ID {
				patients[a.PatientID] = struct{}{}
			}
		}
		out = append(out, &model.DoctorStat{
			DoctorID:     u.ID,
			DoctorName:   u.FullName,
			Role:         u.Role,
			PatientCount: len(patients),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorName < out[j].DoctorName })
	return out, nil
}

func (r clinicPatientRepo) SearchPatients(_ context.Context, clinicID int64, query string, limit int) ([]*model.PatientSearchHit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.PatientSearchHit{}
	for _, p := range r.s.patients {
		if !contains(p.FullName, query) && !contains(p.Phone, query) && !contains(p.IIN, query) {
			continue
		}
		hit := &model.PatientSearchHit{Patient: p}
		for _, cp := range r.s.clinicPatients {
			if cp.ClinicID == clinicID && cp.PatientID == p.ID {
				hit.IsInClinic = cp.IsActive
				first := cp.FirstVisitDate
				hit.FirstVisitDate = &first
			}
		}
		out = append(out, hit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return page(out, 0, limit), nil
}

func (r clinicPatientRepo) SetLastVisit(_ context.Context, clinicID, patientID int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, cp := range r.s.clinicPatients {
		if cp.ClinicID == clinicID && cp.PatientID == patientID {
			cp.LastVisitDate = &at
			cp.UpdatedAt = r.s.now()
			r.s.clinicPatients[id] = cp
		}
	}
	return nil
}
