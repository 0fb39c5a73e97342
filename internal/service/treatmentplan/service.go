// Package treatmentplan manages per-patient treatment plans and their service lines.
package treatmentplan

import (
	"context"
	"errors"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const (
	resource = "Treatment plan"

	addedFromOrderNote = "Added from order"
	msgPlanUpdated     = "Treatment plan updated successfully"
)

type Service struct {
	repo        repository.TreatmentPlanRepository
	patientRepo repository.PatientRepository
	catalogRepo repository.ServiceRepository
	tx          repository.Transactor
}

func NewService(repo repository.TreatmentPlanRepository, patientRepo repository.PatientRepository, catalogRepo repository.ServiceRepository, tx repository.Transactor) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		catalogRepo: catalogRepo,
		tx:          tx,
	}
}

// ListPlans restricts non-admins to the plans of their clinic
func (s *Service) ListPlans(ctx context.Context, current *model.User, filter model.TreatmentPlanFilter) ([]*model.TreatmentPlanDetail, error) {
	if !current.IsAdmin() {
		clinicID, err := service.RequireClinic(current)
		if err != nil {
			return nil, err
		}
		filter.ClinicID = &clinicID
	}
	plans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return plans, nil
}

func (s *Service) ListPatientPlans(ctx context.Context, patientID int64) ([]*model.TreatmentPlanDetail, error) {
	plans, err := s.repo.List(ctx, model.TreatmentPlanFilter{PatientID: &patientID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return plans, nil
}

// ListPatientServices flattens the service lines of every plan of the patient
func (s *Service) ListPatientServices(ctx context.Context, patientID int64) ([]*model.TreatmentPlanService, error) {
	lines, err := s.repo.ListServicesByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if lines == nil {
		lines = []*model.TreatmentPlanService{}
	}
	return lines, nil
}

func (s *Service) GetPlan(ctx context.Context, id int64) (*model.TreatmentPlanDetail, error) {
	plan, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	return plan, nil
}

// CreatePlan records a plan authored by the current user in their clinic
func (s *Service) CreatePlan(ctx context.Context, current *model.User, req model.CreateTreatmentPlanRequest) (*model.TreatmentPlanDetail, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, service.RepoError(err, "Patient")
	}
	lines, err := s.resolveLines(ctx, req.Services)
	if err != nil {
		return nil, err
	}

	plan := &model.TreatmentPlan{
		PatientID:    req.PatientID,
		DoctorID:     current.ID,
		ClinicID:     current.ClinicID,
		Diagnosis:    req.Diagnosis,
		Notes:        req.Notes,
		TreatedTeeth: model.IntList(req.TreatedTeeth),
	}
	if plan.TreatedTeeth == nil {
		plan.TreatedTeeth = model.IntList{}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, plan); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.repo.ReplaceServices(ctx, plan.ID, lines); err != nil {
			return service.WriteError(err, "Service")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, plan.ID)
}

// UpdatePlan applies a partial update. Patient medical notes sent along with
// the plan are written to the patient record.
func (s *Service) UpdatePlan(ctx context.Context, id int64, req model.UpdateTreatmentPlanRequest) (*model.TreatmentPlanDetail, error) {
	plan, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}

	if req.Diagnosis != nil {
		plan.Diagnosis = req.Diagnosis
	}
	if req.Notes != nil {
		plan.Notes = req.Notes
	}
	if req.TreatedTeeth != nil {
		plan.TreatedTeeth = model.IntList(req.TreatedTeeth)
	}

	var lines []*model.TreatmentPlanService
	if req.Services != nil {
		if lines, err = s.resolveLines(ctx, *req.Services); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, plan); err != nil {
			return service.RepoError(err, resource)
		}
		if req.Services != nil {
			if err := s.repo.ReplaceServices(ctx, plan.ID, lines); err != nil {
				return service.WriteError(err, "Service")
			}
		}
		return s.updatePatientNotes(ctx, plan.PatientID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, plan.ID)
}

func (s *Service) updatePatientNotes(ctx context.Context, patientID int64, req model.UpdateTreatmentPlanRequest) error {
	if req.PatientAllergies == nil && req.PatientChronicDiseases == nil &&
		req.PatientContraindications == nil && req.PatientSpecialNotes == nil {
		return nil
	}
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return service.RepoError(err, "Patient")
	}
	if req.PatientAllergies != nil {
		patient.Allergies = req.PatientAllergies
	}
	if req.PatientChronicDiseases != nil {
		patient.ChronicDiseases = req.PatientChronicDiseases
	}
	if req.PatientContraindications != nil {
		patient.Contraindications = req.PatientContraindications
	}
	if req.PatientSpecialNotes != nil {
		patient.SpecialNotes = req.PatientSpecialNotes
	}
	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return service.RepoError(err, "Patient")
	}
	return nil
}

func (s *Service) DeletePlan(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

// UpdateFromOrder adds order lines whose (tooth, service) pair the plan lacks
func (s *Service) UpdateFromOrder(ctx context.Context, planID int64, lines []model.OrderServiceLine) (*model.PlanMergeResult, error) {
	var added int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.repo.Get(ctx, planID)
		if err != nil {
			return service.RepoError(err, resource)
		}
		added, err = s.merge(ctx, plan.ID, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &model.PlanMergeResult{
		Message:          msgPlanUpdated,
		NewServicesAdded: added,
		TreatmentPlanID:  planID,
	}, nil
}

// MergeOrderLines adds tooth-bound order lines to the patient's plan in the
// clinic, creating the plan for doctorID when there is none. Lines without a
// tooth are ignored. Run it inside the order's transaction.
func (s *Service) MergeOrderLines(ctx context.Context, patientID, clinicID, doctorID int64, lines []model.OrderServiceLine) (int, error) {
	toothLines := make([]model.OrderServiceLine, 0, len(lines))
	for _, l := range lines {
		if l.ToothNumber > 0 {
			toothLines = append(toothLines, l)
		}
	}
	if len(toothLines) == 0 {
		return 0, nil
	}

	plan, err := s.repo.FindByPatientAndClinic(ctx, patientID, clinicID)
	if errors.Is(err, repository.ErrNotFound) {
		plan = &model.TreatmentPlan{
			PatientID:    patientID,
			DoctorID:     doctorID,
			ClinicID:     &clinicID,
			TreatedTeeth: model.IntList{},
		}
		if err := s.repo.Create(ctx, plan); err != nil {
			return 0, apperrors.Internal(err)
		}
	} else if err != nil {
		return 0, apperrors.Internal(err)
	}

	return s.merge(ctx, plan.ID, toothLines)
}

type lineKey struct {
	tooth   int
	service int64
}

func (s *Service) merge(ctx context.Context, planID int64, lines []model.OrderServiceLine) (int, error) {
	existing, err := s.repo.ListServices(ctx, planID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	seen := make(map[lineKey]struct{}, len(existing)+len(lines))
	for _, e := range existing {
		seen[lineKey{e.ToothID, e.ServiceID}] = struct{}{}
	}

	added := 0
	for _, l := range lines {
		key := lineKey{l.ToothNumber, l.ServiceID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		line, err := s.orderLine(ctx, planID, l)
		if err != nil {
			return 0, err
		}
		if err := s.repo.AddService(ctx, line); err != nil {
			return 0, service.WriteError(err, "Service")
		}
		added++
	}
	return added, nil
}

// orderLine fills omitted names and prices from the catalog. A service
// missing from the catalog fails the merge with a 404.
func (s *Service) orderLine(ctx context.Context, planID int64, l model.OrderServiceLine) (*model.TreatmentPlanService, error) {
	svc, err := s.catalogRepo.Get(ctx, l.ServiceID)
	if err != nil {
		return nil, service.RepoError(err, "Service")
	}
	line := &model.TreatmentPlanService{
		TreatmentPlanID: planID,
		ServiceID:       l.ServiceID,
		ToothID:         l.ToothNumber,
		ServiceName:     l.ServiceName,
		ServicePrice:    svc.Price,
		Quantity:        l.Quantity,
		Notes:           strPtr(addedFromOrderNote),
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if line.ServiceName == "" {
		line.ServiceName = svc.Name
	}
	if l.ServicePrice != nil {
		line.ServicePrice = *l.ServicePrice
	}
	return line, nil
}

// CheckServices returns a 404 for the first id missing from the catalog
func (s *Service) CheckServices(ctx context.Context, ids ...int64) error {
	checked := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := checked[id]; ok {
			continue
		}
		checked[id] = struct{}{}
		if _, err := s.catalogRepo.Get(ctx, id); err != nil {
			return service.RepoError(err, "Service")
		}
	}
	return nil
}

// resolveLines snapshots catalog names and prices for lines that omit them
func (s *Service) resolveLines(ctx context.Context, inputs []model.TreatmentPlanServiceInput) ([]*model.TreatmentPlanService, error) {
	lines := make([]*model.TreatmentPlanService, 0, len(inputs))
	for _, in := range inputs {
		svc, err := s.catalogRepo.Get(ctx, in.ServiceID)
		if err != nil {
			return nil, service.RepoError(err, "Service")
		}
		line := &model.TreatmentPlanService{
			ServiceID:    in.ServiceID,
			ServiceName:  svc.Name,
			ServicePrice: svc.Price,
			Quantity:     in.Quantity,
			IsCompleted:  in.IsCompleted,
			Notes:        in.Notes,
		}
		if in.ToothID != nil {
			line.ToothID = *in.ToothID
		}
		if in.ServiceName != nil {
			line.ServiceName = *in.ServiceName
		}
		if in.ServicePrice != nil {
			line.ServicePrice = *in.ServicePrice
		}
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func strPtr(s string) *string {
	return &s
}
