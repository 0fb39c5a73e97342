package patient

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const (
	resource = "Patient"

	msgIINTaken   = "Patient with this IIN already exists"
	msgPhoneTaken = "Patient with this phone already exists"

	searchLimit = 20
	iinLength   = 12
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPatients(ctx context.Context, search string, page, size int) (*model.PatientList, error) {
	patients, total, err := s.repo.List(ctx, model.PatientFilter{
		Search:   strings.TrimSpace(search),
		PageSize: model.PageSize{Page: page, Size: size},
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	return &model.PatientList{Patients: patients, Total: total, Page: page, Size: size}, nil
}

func (s *Service) CreatePatient(ctx context.Context, req model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.ensureUnique(ctx, 0, req.IIN, req.Phone); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		FullName:          req.FullName,
		Phone:             req.Phone,
		IIN:               req.IIN,
		BirthDate:         req.BirthDate,
		Allergies:         req.Allergies,
		ChronicDiseases:   req.ChronicDiseases,
		Contraindications: req.Contraindications,
		SpecialNotes:      req.SpecialNotes,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateError(err)
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return p, nil
}

func (s *Service) GetByIIN(ctx context.Context, iin string) (*model.Patient, error) {
	p, err := s.repo.GetByIIN(ctx, iin)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return p, nil
}

// GetByPhone matches the phone as given, as bare digits and with a "+" prefix
func (s *Service) GetByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	p, err := s.repo.GetByPhone(ctx, PhoneCandidates(phone)...)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, req model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	var iin, phone string
	if req.IIN != nil && *req.IIN != patient.IIN {
		iin = *req.IIN
	}
	if req.Phone != nil && *req.Phone != patient.Phone {
		phone = *req.Phone
	}
	if err := s.ensureUnique(ctx, patient.ID, iin, phone); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.IIN != nil {
		patient.IIN = *req.IIN
	}
	if req.BirthDate != nil {
		patient.BirthDate = *req.BirthDate
	}
	if req.Allergies != nil {
		patient.Allergies = req.Allergies
	}
	if req.ChronicDiseases != nil {
		patient.ChronicDiseases = req.ChronicDiseases
	}
	if req.Contraindications != nil {
		patient.Contraindications = req.Contraindications
	}
	if req.SpecialNotes != nil {
		patient.SpecialNotes = req.SpecialNotes
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateError(err)
		}
		return nil, service.RepoError(err, resource)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

// SearchPatients treats a 12 digit query as an IIN, then tries phone and
// finally name matches. The first non-empty tier wins.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]*model.Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.BadRequest("Search query is required", nil)
	}

	if IsIIN(query) {
		p, err := s.repo.GetByIIN(ctx, query)
		if err == nil {
			return []*model.Patient{p}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
	}

	byPhone, err := s.repo.SearchByPhone(ctx, query, searchLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(byPhone) > 0 {
		return byPhone, nil
	}

	byName, err := s.repo.SearchByName(ctx, query, searchLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if byName == nil {
		byName = []*model.Patient{}
	}
	return byName, nil
}

// duplicateError reports which unique constraint a concurrent write hit
func duplicateError(err error) error {
	if strings.Contains(err.Error(), repository.ConstraintPatientPhone) {
		return apperrors.BadRequest(msgPhoneTaken, err)
	}
	return apperrors.BadRequest(msgIINTaken, err)
}

func (s *Service) ensureUnique(ctx context.Context, selfID int64, iin, phone string) error {
	if iin != "" {
		existing, err := s.repo.GetByIIN(ctx, iin)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(err)
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.BadRequest(msgIINTaken, nil)
		}
	}
	if phone != "" {
		existing, err := s.repo.GetByPhone(ctx, phone)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(err)
		}
		if existing != nil && existing.ID != selfID {
			return apperrors.BadRequest(msgPhoneTaken, nil)
		}
	}
	return nil
}

// PhoneCandidates returns the distinct spellings a stored phone may use
func PhoneCandidates(phone string) []string {
	phone = strings.TrimSpace(phone)
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	out := []string{phone}
	for _, c := range []string{digits, "+" + digits} {
		if c == "" || c == "+" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// IsIIN reports whether s is a 12 digit national id
func IsIIN(s string) bool {
	if len(s) != iinLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
