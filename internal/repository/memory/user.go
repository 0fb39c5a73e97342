package memory

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type userRepo struct{ s *Store }

func (r userRepo) phoneTaken(phone string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Phone == phone {
			return true
		}
	}
	return false
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.phoneTaken(u.Phone, 0) {
		return repository.ErrDuplicate
	}
	u.ID = r.s.nextID()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Get(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) Update(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.phoneTaken(u.Phone, u.ID) {
		return repository.ErrDuplicate
	}
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	if r.s.userReferenced(id) {
		return repository.ErrForeignKey
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) List(_ context.Context, f model.UserFilter) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.User{}
	for _, id := range sortedIDs(r.s.users) {
		u := r.s.users[id]
		if f.ClinicID != nil && !u.InClinic(f.ClinicID) {
			continue
		}
		if len(f.Roles) > 0 && !u.HasRole(f.Roles...) {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		out = append(out, &u)
	}
	return page(out, f.Skip, f.Limit), nil
}
