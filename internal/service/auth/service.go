package auth

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/auth"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const (
	TokenType = "bearer"

	msgBadCredentials = "Incorrect phone or password"
	msgInvalidToken   = "Could not validate credentials"
	msgInactiveUser   = "Inactive user"
)

// UserCache is implemented by services that cache users by phone
type UserCache interface {
	Invalidate(phone string)
}

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	cache    *gocache.Cache
}

// NewService caches authenticated users for cacheTTL. A zero TTL disables caching.
func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, cacheTTL time.Duration) *Service {
	s := &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

func (s *Service) Login(ctx context.Context, phone, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized(msgBadCredentials, nil)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Info().Str("phone", phone).Msg("login rejected: bad password")
		return nil, apperrors.Unauthorized(msgBadCredentials, nil)
	}
	if !user.IsActive {
		return nil, apperrors.BadRequest(msgInactiveUser, nil)
	}

	token, _, err := s.jwtSvc.GenerateAccessToken(user.Phone)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   TokenType,
		User:        user.Summary(),
	}, nil
}

// Authenticate resolves a bearer token to an active user
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(msgInvalidToken, err)
	}

	user, err := s.userByPhone(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(msgInactiveUser, nil)
	}
	return user, nil
}

func (s *Service) userByPhone(ctx context.Context, phone string) (*model.User, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(phone); ok {
			u := cached.(model.User)
			return &u, nil
		}
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized(msgInvalidToken, nil)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.cache != nil {
		s.cache.SetDefault(phone, *user)
	}
	return user, nil
}

// Invalidate drops the cached user for phone
func (s *Service) Invalidate(phone string) {
	if s.cache != nil {
		s.cache.Delete(phone)
	}
}
