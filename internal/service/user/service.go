package user

import (
	"context"
	"errors"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const (
	resource = "User"

	msgPhoneTaken = "User with this phone already exists"
)

// CacheInvalidator drops cached copies of a user. Implemented by the auth service.
type CacheInvalidator interface {
	Invalidate(phone string)
}

type Service struct {
	repo       repository.UserRepository
	clinicRepo repository.ClinicRepository
	hasher     security.PasswordHasher
	cache      CacheInvalidator
}

func NewService(repo repository.UserRepository, clinicRepo repository.ClinicRepository, hasher security.PasswordHasher, cache CacheInvalidator) *Service {
	return &Service{
		repo:       repo,
		clinicRepo: clinicRepo,
		hasher:     hasher,
		cache:      cache,
	}
}

func (s *Service) ListUsers(ctx context.Context, clinicID *int64, skip, limit int) ([]*model.User, error) {
	users, err := s.repo.List(ctx, model.UserFilter{ClinicID: clinicID, Skip: skip, Limit: limit})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

// ListDoctors returns active doctors and nurses of clinicID, falling back to
// the clinic of the current user.
func (s *Service) ListDoctors(ctx context.Context, current *model.User, clinicID *int64) ([]*model.User, error) {
	if clinicID == nil {
		clinicID = current.ClinicID
	}
	if clinicID == nil {
		return nil, apperrors.BadRequest("Clinic ID is required", nil)
	}

	active := true
	users, err := s.repo.List(ctx, model.UserFilter{
		ClinicID: clinicID,
		Roles:    []string{model.RoleDoctor, model.RoleNurse},
		Active:   &active,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if req.ClinicID != nil {
		if _, err := s.clinicRepo.Get(ctx, *req.ClinicID); err != nil {
			return nil, service.RepoError(err, "Clinic")
		}
	}
	if err := s.ensurePhoneFree(ctx, req.Phone, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid password", err)
	}

	user := &model.User{
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		ClinicID:     req.ClinicID,
		IsActive:     true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.BadRequest(msgPhoneTaken, err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// GetUser is allowed for admins and for members of the user's clinic
func (s *Service) GetUser(ctx context.Context, current *model.User, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if !current.IsAdmin() && !current.InClinic(user.ClinicID) {
		return nil, apperrors.Forbidden("")
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	oldPhone := user.Phone

	if req.Phone != nil && *req.Phone != user.Phone {
		if err := s.ensurePhoneFree(ctx, *req.Phone, user.ID); err != nil {
			return nil, err
		}
		user.Phone = *req.Phone
	}
	if req.ClinicID != nil {
		if _, err := s.clinicRepo.Get(ctx, *req.ClinicID); err != nil {
			return nil, service.RepoError(err, "Clinic")
		}
		user.ClinicID = req.ClinicID
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.BadRequest("Invalid password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.BadRequest(msgPhoneTaken, err)
		}
		return nil, service.RepoError(err, resource)
	}

	s.invalidate(oldPhone, user.Phone)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, current *model.User, id int64) error {
	if current.ID == id {
		return apperrors.BadRequest("Cannot delete yourself", nil)
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.RepoError(err, resource)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	s.invalidate(user.Phone)
	return nil
}

func (s *Service) ActivateUser(ctx context.Context, id int64) (*model.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) DeactivateUser(ctx context.Context, current *model.User, id int64) (*model.User, error) {
	if current.ID == id {
		return nil, apperrors.BadRequest("Cannot deactivate yourself", nil)
	}
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, resource)
	}
	s.invalidate(user.Phone)
	return user, nil
}

func (s *Service) ensurePhoneFree(ctx context.Context, phone string, selfID int64) error {
	existing, err := s.repo.GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.Internal(err)
	case existing.ID != selfID:
		return apperrors.BadRequest(msgPhoneTaken, nil)
	}
	return nil
}

func (s *Service) invalidate(phones ...string) {
	if s.cache == nil {
		return
	}
	for _, p := range phones {
		s.cache.Invalidate(p)
	}
}
