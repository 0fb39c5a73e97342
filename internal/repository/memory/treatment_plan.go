package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type planRepo struct{ s *Store }

func (r planRepo) Create(_ context.Context, p *model.TreatmentPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.plans[p.ID] = *p
	return nil
}

func (r planRepo) Get(_ context.Context, id int64) (*model.TreatmentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r planRepo) services(planID int64) []*model.TreatmentPlanService {
	out := []*model.TreatmentPlanService{}
	for _, id := range sortedIDs(r.s.planServices) {
		if svc := r.s.planServices[id]; svc.TreatmentPlanID == planID {
			out = append(out, &svc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ToothID < out[j].ToothID })
	return out
}

func (r planRepo) detail(p model.TreatmentPlan) *model.TreatmentPlanDetail {
	d := &model.TreatmentPlanDetail{TreatmentPlan: p}
	if pt, ok := r.s.patients[p.PatientID]; ok {
		d.PatientName = strPtr(pt.FullName)
		d.PatientPhone = strPtr(pt.Phone)
		d.PatientIIN = strPtr(pt.IIN)
		birth := pt.BirthDate
		d.PatientBirthDate = &birth
		d.PatientAllergies = pt.Allergies
		d.PatientChronicDiseases = pt.ChronicDiseases
		d.PatientContraindications = pt.Contraindications
		d.PatientSpecialNotes = pt.SpecialNotes
	}
	if u, ok := r.s.users[p.DoctorID]; ok {
		d.DoctorName = strPtr(u.FullName)
	}
	d.Services = r.services(p.ID)
	d.Summarize()
	return d
}

func (r planRepo) GetDetail(_ context.Context, id int64) (*model.TreatmentPlanDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(p), nil
}

func (r planRepo) FindByPatientAndClinic(_ context.Context, patientID, clinicID int64) (*model.TreatmentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.plans) {
		p := r.s.plans[id]
		if p.PatientID == patientID && p.ClinicID != nil && *p.ClinicID == clinicID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r planRepo) Update(_ context.Context, p *model.TreatmentPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = r.s.now()
	r.s.plans[p.ID] = *p
	return nil
}

func (r planRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.plans, id)
	r.clear(id)
	return nil
}

func (r planRepo) clear(planID int64) {
	for id, svc := range r.s.planServices {
		if svc.TreatmentPlanID == planID {
			delete(r.s.planServices, id)
		}
	}
	for id, ts := range r.s.toothServices {
		if ts.TreatmentPlanID == planID {
			delete(r.s.toothServices, id)
		}
	}
}

func (r planRepo) List(_ context.Context, f model.TreatmentPlanFilter) ([]*model.TreatmentPlanDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.TreatmentPlanDetail{}
	for _, id := range sortedIDs(r.s.plans) {
		p := r.s.plans[id]
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && p.DoctorID != *f.DoctorID {
			continue
		}
		if f.ClinicID != nil && (p.ClinicID == nil || *p.ClinicID != *f.ClinicID) {
			continue
		}
		out = append(out, r.detail(p))
	}
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Skip, f.Limit), nil
}

func (r planRepo) ListServices(_ context.Context, planID int64) ([]*model.TreatmentPlanService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.services(planID), nil
}

func (r planRepo) ListServicesByPatient(_ context.Context, patientID int64) ([]*model.TreatmentPlanService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.TreatmentPlanService{}
	for _, id := range sortedIDs(r.s.plans) {
		if r.s.plans[id].PatientID == patientID {
			out = append(out, r.services(id)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ToothID < out[j].ToothID })
	return out, nil
}

func (r planRepo) addLocked(svc *model.TreatmentPlanService) {
	svc.ID = r.s.nextID()
	r.s.planServices[svc.ID] = *svc
}

func (r planRepo) AddService(_ context.Context, svc *model.TreatmentPlanService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[svc.TreatmentPlanID]; !ok {
		return repository.ErrNotFound
	}
	if !r.s.servicesExist(svc.ServiceID) {
		return repository.ErrForeignKey
	}
	r.addLocked(svc)
	return nil
}

func (r planRepo) ReplaceServices(_ context.Context, planID int64, services []*model.TreatmentPlanService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, svc := range services {
		if !r.s.servicesExist(svc.ServiceID) {
			return repository.ErrForeignKey
		}
	}
	for id, svc := range r.s.planServices {
		if svc.TreatmentPlanID == planID {
			delete(r.s.planServices, id)
		}
	}
	for _, svc := range services {
		svc.TreatmentPlanID = planID
		r.addLocked(svc)
	}
	return nil
}
