// Package service holds helpers shared by the domain services.
package service

import (
	"errors"
	"fmt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

// RepoError converts repository errors into application errors. Missing rows
// become a 404 for resource. A foreign key violation means resource is still
// referenced and becomes a 409. Anything else is internal.
func RepoError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	if errors.Is(err, repository.ErrForeignKey) {
		return apperrors.Conflict(fmt.Sprintf("%s is referenced by other records", resource), err)
	}
	return apperrors.Internal(err)
}

// WriteError converts errors from inserts whose references were checked
// first. A foreign key violation there means ref disappeared in between.
func WriteError(err error, ref string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrForeignKey) {
		return apperrors.NotFound(ref, err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal(err)
}

// RequireClinic returns the clinic of user or a 400 when it has none
func RequireClinic(user *model.User) (int64, error) {
	if user == nil || user.ClinicID == nil {
		return 0, apperrors.BadRequest("User is not assigned to a clinic", nil)
	}
	return *user.ClinicID, nil
}

// Message is the body of endpoints that only confirm an action
type Message struct {
	Message string `json:"message"`
}
