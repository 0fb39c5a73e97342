package postgres

import (
	"context"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type toothServiceRepository struct {
	BaseRepository
}

func NewToothServiceRepository(base BaseRepository) repository.ToothServiceRepository {
	return &toothServiceRepository{base}
}

const toothServiceColumns = `id, treatment_plan_id, tooth_id, service_ids, service_statuses`

func (r *toothServiceRepository) Create(ctx context.Context, ts *model.ToothService) error {
	query := `
		INSERT INTO tooth_services (treatment_plan_id, tooth_id, service_ids, service_statuses)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.conn(ctx).QueryRowxContext(ctx, query,
		ts.TreatmentPlanID,
		ts.ToothID,
		ts.ServiceIDs,
		ts.ServiceStatuses,
	).Scan(&ts.ID)
	return mapError(err, "create tooth service")
}

func (r *toothServiceRepository) Get(ctx context.Context, id int64) (*model.ToothService, error) {
	var ts model.ToothService
	query := `SELECT ` + toothServiceColumns + ` FROM tooth_services WHERE id = $1`
	if err := r.conn(ctx).GetContext(ctx, &ts, query, id); err != nil {
		return nil, mapError(err, "get tooth service")
	}
	return &ts, nil
}

func (r *toothServiceRepository) Update(ctx context.Context, ts *model.ToothService) error {
	query := `UPDATE tooth_services SET service_ids = $1, service_statuses = $2 WHERE id = $3`
	result, err := r.conn(ctx).ExecContext(ctx, query, ts.ServiceIDs, ts.ServiceStatuses, ts.ID)
	if err != nil {
		return mapError(err, "update tooth service")
	}
	return checkAffected(result, "update tooth service")
}

func (r *toothServiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM tooth_services WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete tooth service")
	}
	return checkAffected(result, "delete tooth service")
}

func (r *toothServiceRepository) ListByPlan(ctx context.Context, planID int64) ([]*model.ToothService, error) {
	query := `SELECT ` + toothServiceColumns + ` FROM tooth_services WHERE treatment_plan_id = $1 ORDER BY tooth_id`
	items := []*model.ToothService{}
	if err := r.conn(ctx).SelectContext(ctx, &items, query, planID); err != nil {
		return nil, mapError(err, "list tooth services")
	}
	return items, nil
}

func (r *toothServiceRepository) DeleteByPlan(ctx context.Context, planID int64) (int64, error) {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM tooth_services WHERE treatment_plan_id = $1`, planID)
	if err != nil {
		return 0, mapError(err, "delete tooth services")
	}
	return result.RowsAffected()
}
