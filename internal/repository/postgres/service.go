package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

const serviceColumns = `id, name, price, description, is_active, clinic_id, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (name, price, description, is_active, clinic_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		service.Name,
		service.Price,
		service.Description,
		service.IsActive,
		service.ClinicID,
		service.CreatedAt,
		service.UpdatedAt,
	).Scan(&service.ID)
	return mapError(err, "create service")
}

func (r *serviceRepository) Get(ctx context.Context, id int64) (*model.Service, error) {
	var service model.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	if err := r.conn(ctx).GetContext(ctx, &service, query, id); err != nil {
		return nil, mapError(err, "get service")
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, price = $2, description = $3, is_active = $4, clinic_id = $5, updated_at = $6
		WHERE id = $7
	`
	service.UpdatedAt = time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query,
		service.Name,
		service.Price,
		service.Description,
		service.IsActive,
		service.ClinicID,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return mapError(err, "update service")
	}
	return checkAffected(result, "update service")
}

func (r *serviceRepository) List(ctx context.Context, filter model.ServiceFilter) ([]*model.Service, error) {
	var (
		args       queryArgs
		conditions []string
	)
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.ClinicID != nil {
		conditions = append(conditions, "(clinic_id = "+args.add(*filter.ClinicID)+" OR clinic_id IS NULL)")
	}

	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name OFFSET " + args.add(filter.Skip) + " LIMIT " + args.add(filter.Limit)

	services := []*model.Service{}
	if err := r.conn(ctx).SelectContext(ctx, &services, query, args...); err != nil {
		return nil, mapError(err, "list services")
	}
	return services, nil
}
