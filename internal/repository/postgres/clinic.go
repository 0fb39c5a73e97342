package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

const clinicColumns = `id, name, description, address, contacts, is_active, created_at, updated_at`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			name, description, address, contacts, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id
	`
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		clinic.Name,
		clinic.Description,
		clinic.Address,
		clinic.Contacts,
		clinic.IsActive,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	).Scan(&clinic.ID)
	return mapError(err, "create clinic")
}

func (r *clinicRepository) Get(ctx context.Context, id int64) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`

	var clinic model.Clinic
	if err := r.conn(ctx).GetContext(ctx, &clinic, query, id); err != nil {
		return nil, mapError(err, "get clinic")
	}
	return &clinic, nil
}

func (r *clinicRepository) GetByName(ctx context.Context, name string) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE name = $1 ORDER BY id LIMIT 1`

	var clinic model.Clinic
	if err := r.conn(ctx).GetContext(ctx, &clinic, query, name); err != nil {
		return nil, mapError(err, "get clinic by name")
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, description = $2, address = $3, contacts = $4,
			is_active = $5, updated_at = $6
		WHERE id = $7
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.conn(ctx).ExecContext(ctx, query,
		clinic.Name,
		clinic.Description,
		clinic.Address,
		clinic.Contacts,
		clinic.IsActive,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return mapError(err, "update clinic")
	}
	return checkAffected(result, "update clinic")
}

func (r *clinicRepository) List(ctx context.Context, skip, limit int) ([]*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY id OFFSET $1 LIMIT $2`

	clinics := []*model.Clinic{}
	if err := r.conn(ctx).SelectContext(ctx, &clinics, query, skip, limit); err != nil {
		return nil, mapError(err, "list clinics")
	}
	return clinics, nil
}
