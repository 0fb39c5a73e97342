package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type serviceRepo struct{ s *Store }

func (r serviceRepo) Create(_ context.Context, svc *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc.ID = r.s.nextID()
	svc.CreatedAt = r.s.now()
	svc.UpdatedAt = svc.CreatedAt
	r.s.services[svc.ID] = *svc
	return nil
}

func (r serviceRepo) Get(_ context.Context, id int64) (*model.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (r serviceRepo) Update(_ context.Context, svc *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[svc.ID]; !ok {
		return repository.ErrNotFound
	}
	svc.UpdatedAt = r.s.now()
	r.s.services[svc.ID] = *svc
	return nil
}

func (r serviceRepo) List(_ context.Context, f model.ServiceFilter) ([]*model.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Service{}
	for _, id := range sortedIDs(r.s.services) {
		svc := r.s.services[id]
		if f.ActiveOnly && !svc.IsActive {
			continue
		}
		if f.ClinicID != nil && svc.ClinicID != nil && *svc.ClinicID != *f.ClinicID {
			continue
		}
		out = append(out, &svc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Skip, f.Limit), nil
}
