package memory

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type clinicRepo struct{ s *Store }

func (r clinicRepo) Create(_ context.Context, c *model.Clinic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.clinics[c.ID] = *c
	return nil
}

func (r clinicRepo) Get(_ context.Context, id int64) (*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r clinicRepo) GetByName(_ context.Context, name string) (*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.clinics) {
		if c := r.s.clinics[id]; c.Name == name {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r clinicRepo) Update(_ context.Context, c *model.Clinic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clinics[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = r.s.now()
	r.s.clinics[c.ID] = *c
	return nil
}

func (r clinicRepo) List(_ context.Context, skip, limit int) ([]*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Clinic{}
	for _, id := range sortedIDs(r.s.clinics) {
		c := r.s.clinics[id]
		out = append(out, &c)
	}
	return page(out, skip, limit), nil
}
