package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type toothServiceRepo struct{ s *Store }

func (r toothServiceRepo) Create(_ context.Context, ts *model.ToothService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts.ID = r.s.nextID()
	r.s.toothServices[ts.ID] = *ts
	return nil
}

func (r toothServiceRepo) Get(_ context.Context, id int64) (*model.ToothService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts, ok := r.s.toothServices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ts, nil
}

func (r toothServiceRepo) Update(_ context.Context, ts *model.ToothService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.toothServices[ts.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.toothServices[ts.ID] = *ts
	return nil
}

func (r toothServiceRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.toothServices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.toothServices, id)
	return nil
}

func (r toothServiceRepo) ListByPlan(_ context.Context, planID int64) ([]*model.ToothService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.ToothService{}
	for _, id := range sortedIDs(r.s.toothServices) {
		if ts := r.s.toothServices[id]; ts.TreatmentPlanID == planID {
			out = append(out, &ts)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ToothID < out[j].ToothID })
	return out, nil
}

func (r toothServiceRepo) DeleteByPlan(_ context.Context, planID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, ts := range r.s.toothServices {
		if ts.TreatmentPlanID == planID {
			delete(r.s.toothServices, id)
			n++
		}
	}
	return n, nil
}
