// Package bootstrap seeds the default clinic and the superuser account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const DefaultClinicName = "Main clinic"

type Options struct {
	ClinicName string
	Phone      string
	Password   string
	FullName   string
}

// Result reports what Run created
type Result struct {
	Clinic        *model.Clinic
	Superuser     *model.User
	ClinicCreated bool
	UserCreated   bool
}

type Service struct {
	clinics repository.ClinicRepository
	users   repository.UserRepository
	hasher  security.PasswordHasher
}

func NewService(clinics repository.ClinicRepository, users repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{clinics: clinics, users: users, hasher: hasher}
}

// Run is idempotent. Existing rows are left untouched. Without a superuser
// phone and password only the clinic is ensured.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ClinicName == "" {
		opts.ClinicName = DefaultClinicName
	}
	res := &Result{}

	clinic, err := s.clinics.GetByName(ctx, opts.ClinicName)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		clinic = &model.Clinic{Name: opts.ClinicName, IsActive: true}
		if err := s.clinics.Create(ctx, clinic); err != nil {
			return nil, fmt.Errorf("failed to create default clinic: %w", err)
		}
		res.ClinicCreated = true
		log.Info().Int64("clinic_id", clinic.ID).Str("name", clinic.Name).Msg("default clinic created")
	case err != nil:
		return nil, fmt.Errorf("failed to load default clinic: %w", err)
	}
	res.Clinic = clinic

	if opts.Phone == "" || opts.Password == "" {
		log.Warn().Msg("superuser credentials not configured, skipping superuser")
		return res, nil
	}

	user, err := s.users.GetByPhone(ctx, opts.Phone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := s.hasher.Hash(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash superuser password: %w", err)
		}
		name := opts.FullName
		if name == "" {
			name = "Administrator"
		}
		user = &model.User{
			FullName:     name,
			Phone:        opts.Phone,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			ClinicID:     &clinic.ID,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create superuser: %w", err)
		}
		res.UserCreated = true
		log.Info().Int64("user_id", user.ID).Str("phone", user.Phone).Msg("superuser created")
	case err != nil:
		return nil, fmt.Errorf("failed to load superuser: %w", err)
	}
	res.Superuser = user
	return res, nil
}
