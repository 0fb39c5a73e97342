package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type orderRepo struct{ s *Store }

func orderServiceIDs(services []*model.TreatmentOrderService) []int64 {
	ids := make([]int64, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ServiceID)
	}
	return ids
}

func (r orderRepo) insertServices(orderID int64, services []*model.TreatmentOrderService) {
	for _, svc := range services {
		svc.ID = r.s.nextID()
		svc.TreatmentOrderID = orderID
		r.s.orderServices[svc.ID] = *svc
	}
}

func (r orderRepo) Create(_ context.Context, o *model.TreatmentOrder, services []*model.TreatmentOrderService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.servicesExist(orderServiceIDs(services)...) {
		return repository.ErrForeignKey
	}
	o.ID = r.s.nextID()
	o.CreatedAt = r.s.now()
	r.s.orders[o.ID] = *o
	r.insertServices(o.ID, services)
	return nil
}

func (r orderRepo) Get(_ context.Context, id int64) (*model.TreatmentOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r orderRepo) detail(o model.TreatmentOrder) *model.TreatmentOrderDetail {
	d := &model.TreatmentOrderDetail{TreatmentOrder: o, Services: []*model.TreatmentOrderService{}}
	if p, ok := r.s.patients[o.PatientID]; ok {
		d.PatientName = p.FullName
		d.PatientPhone = p.Phone
		d.PatientIIN = p.IIN
	}
	if u, ok := r.s.users[o.CreatedByID]; ok {
		d.DoctorName = u.FullName
	}
	for _, id := range sortedIDs(r.s.orderServices) {
		if svc := r.s.orderServices[id]; svc.TreatmentOrderID == o.ID {
			d.Services = append(d.Services, &svc)
		}
	}
	return d
}

func (r orderRepo) GetDetail(_ context.Context, id int64) (*model.TreatmentOrderDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(o), nil
}

func (r orderRepo) Update(_ context.Context, o *model.TreatmentOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.orders[o.ID] = *o
	return nil
}

func (r orderRepo) ReplaceServices(_ context.Context, orderID int64, services []*model.TreatmentOrderService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.servicesExist(orderServiceIDs(services)...) {
		return repository.ErrForeignKey
	}
	for id, svc := range r.s.orderServices {
		if svc.TreatmentOrderID == orderID {
			delete(r.s.orderServices, id)
		}
	}
	r.insertServices(orderID, services)
	return nil
}

func (r orderRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.orders, id)
	for sid, svc := range r.s.orderServices {
		if svc.TreatmentOrderID == id {
			delete(r.s.orderServices, sid)
		}
	}
	return nil
}

func (r orderRepo) List(_ context.Context, f model.TreatmentOrderFilter) ([]*model.TreatmentOrderDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.TreatmentOrderDetail{}
	for _, o := range r.s.orders {
		if f.ClinicID != nil && (o.ClinicID == nil || *o.ClinicID != *f.ClinicID) {
			continue
		}
		d := r.detail(o)
		if f.Search != "" && !contains(d.PatientName, f.Search) && !contains(d.PatientPhone, f.Search) && !contains(d.PatientIIN, f.Search) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Skip, f.Limit), nil
}
