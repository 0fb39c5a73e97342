package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type patientRepo struct{ s *Store }

// conflict names the unique constraint p would violate, as Postgres does
func (r patientRepo) conflict(p *model.Patient) error {
	for _, id := range sortedIDs(r.s.patients) {
		if id == p.ID {
			continue
		}
		switch other := r.s.patients[id]; {
		case other.IIN == p.IIN:
			return fmt.Errorf("%w (%s)", repository.ErrDuplicate, repository.ConstraintPatientIIN)
		case other.Phone == p.Phone:
			return fmt.Errorf("%w (%s)", repository.ErrDuplicate, repository.ConstraintPatientPhone)
		}
	}
	return nil
}

func (r patientRepo) Create(_ context.Context, p *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.conflict(p); err != nil {
		return err
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.patients[p.ID] = *p
	return nil
}

func (r patientRepo) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r patientRepo) GetByIIN(_ context.Context, iin string) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.IIN == iin {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r patientRepo) GetByPhone(_ context.Context, phones ...string) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.patients) {
		p := r.s.patients[id]
		for _, phone := range phones {
			if p.Phone == phone {
				return &p, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r patientRepo) Update(_ context.Context, p *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.conflict(p); err != nil {
		return err
	}
	p.UpdatedAt = r.s.now()
	r.s.patients[p.ID] = *p
	return nil
}

func (r patientRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.patients, id)
	return nil
}

func (r patientRepo) matching(match func(p model.Patient) bool) []*model.Patient {
	out := []*model.Patient{}
	for _, id := range sortedIDs(r.s.patients) {
		p := r.s.patients[id]
		if match(p) {
			out = append(out, &p)
		}
	}
	return out
}

func (r patientRepo) List(_ context.Context, f model.PatientFilter) ([]*model.Patient, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.matching(func(p model.Patient) bool {
		return f.Search == "" || contains(p.FullName, f.Search) || contains(p.IIN, f.Search) || contains(p.Phone, f.Search)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Offset(), f.Size), len(out), nil
}

func (r patientRepo) SearchByPhone(_ context.Context, phone string, limit int) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matching(func(p model.Patient) bool { return contains(p.Phone, phone) }), 0, limit), nil
}

func (r patientRepo) SearchByName(_ context.Context, name string, limit int) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.matching(func(p model.Patient) bool { return contains(p.FullName, name) }), 0, limit), nil
}
