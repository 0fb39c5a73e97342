package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

func TestRepoError(t *testing.T) {
	assert.NoError(t, RepoError(nil, "Patient"))

	err := RepoError(fmt.Errorf("failed to get patient: %w", repository.ErrNotFound), "Patient")
	assert.Equal(t, "Patient not found", apperrors.As(err).Message)

	err = RepoError(fmt.Errorf("failed to delete user: %w", repository.ErrForeignKey), "User")
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "User is referenced by other records", apperrors.As(err).Message)

	forbidden := apperrors.Forbidden("")
	assert.Same(t, forbidden, RepoError(forbidden, "User"))

	err = RepoError(errors.New("boom"), "User")
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
}

func TestWriteError(t *testing.T) {
	assert.NoError(t, WriteError(nil, "Service"))

	err := WriteError(fmt.Errorf("failed to create treatment order service: %w", repository.ErrForeignKey), "Service")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Service not found", apperrors.As(err).Message)

	err = WriteError(errors.New("boom"), "Service")
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
}

func TestRequireClinic(t *testing.T) {
	_, err := RequireClinic(&model.User{})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	id := int64(7)
	got, err := RequireClinic(&model.User{ClinicID: &id})
	assert.NoError(t, err)
	assert.Equal(t, id, got)
}
