package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const userColumns = `id, full_name, phone, password_hash, role, clinic_id, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			full_name, phone, password_hash, role, clinic_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		user.FullName,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.ClinicID,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	return mapError(err, "create user")
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.conn(ctx).GetContext(ctx, &user, query, id); err != nil {
		return nil, mapError(err, "get user")
	}

	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	var user model.User
	if err := r.conn(ctx).GetContext(ctx, &user, query, phone); err != nil {
		return nil, mapError(err, "get user by phone")
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			full_name = $1,
			phone = $2,
			password_hash = $3,
			role = $4,
			clinic_id = $5,
			is_active = $6,
			updated_at = $7
		WHERE id = $8
	`

	user.UpdatedAt = time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query,
		user.FullName,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.ClinicID,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return mapError(err, "update user")
	}

	return checkAffected(result, "update user")
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete user")
	}
	return checkAffected(result, "delete user")
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.ClinicID != nil {
		args = append(args, *filter.ClinicID)
		conditions = append(conditions, fmt.Sprintf("clinic_id = $%d", len(args)))
	}
	if len(filter.Roles) > 0 {
		args = append(args, pq.Array(filter.Roles))
		conditions = append(conditions, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	if filter.Limit > 0 {
		args = append(args, filter.Skip, filter.Limit)
		query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)-1, len(args))
	}

	users := []*model.User{}
	if err := r.conn(ctx).SelectContext(ctx, &users, query, args...); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}
