// Package treatmentorder manages treatment orders, the priced record of a visit.
package treatmentorder

import (
	"context"
	"strings"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service"
	"github.com/jwalitptl/dental-api/internal/service/notification"
	"github.com/jwalitptl/dental-api/internal/service/treatmentplan"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
)

const resource = "Treatment order"

type Service struct {
	repo        repository.TreatmentOrderRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	tx          repository.Transactor
	plans       *treatmentplan.Service
	notifier    *notification.Service
}

func NewService(
	repo repository.TreatmentOrderRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	plans *treatmentplan.Service,
	notifier *notification.Service,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		tx:          tx,
		plans:       plans,
		notifier:    notifier,
	}
}

// ListOrders returns the orders of clinicID, or of the current clinic when nil
func (s *Service) ListOrders(ctx context.Context, current *model.User, clinicID *int64, search string, skip, limit int) ([]*model.TreatmentOrderDetail, error) {
	if clinicID == nil {
		id, err := service.RequireClinic(current)
		if err != nil {
			return nil, err
		}
		clinicID = &id
	}
	orders, err := s.repo.List(ctx, model.TreatmentOrderFilter{
		ClinicID: clinicID,
		Search:   strings.TrimSpace(search),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, current *model.User, id int64) (*model.TreatmentOrderDetail, error) {
	order, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, resource)
	}
	if !current.InClinic(order.ClinicID) {
		return nil, apperrors.NotFound(resource, nil)
	}
	return order, nil
}

// CreateOrder stores the order in the current clinic and merges its
// tooth-bound lines into the patient's treatment plan in one transaction.
func (s *Service) CreateOrder(ctx context.Context, current *model.User, req model.CreateTreatmentOrderRequest) (*model.TreatmentOrderDetail, error) {
	clinicID, err := service.RequireClinic(current)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &req.PatientID, &req.DoctorID); err != nil {
		return nil, err
	}
	if err := s.plans.CheckServices(ctx, serviceIDs(req.Services)...); err != nil {
		return nil, err
	}

	order := &model.TreatmentOrder{
		PatientID:     req.PatientID,
		CreatedByID:   req.DoctorID,
		AppointmentID: req.AppointmentID,
		ClinicID:      &clinicID,
		VisitDate:     req.VisitDate,
		TotalAmount:   req.TotalAmount,
		Status:        req.Status,
	}
	if order.Status == "" {
		order.Status = model.TreatmentOrderStatusCompleted
	}
	lines := orderLines(req.Services)
	if order.TotalAmount == 0 {
		order.TotalAmount = Total(lines)
	}

	var detail *model.TreatmentOrderDetail
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order, lines); err != nil {
			return service.WriteError(err, "Service")
		}
		if _, err := s.plans.MergeOrderLines(ctx, order.PatientID, clinicID, order.CreatedByID, mergeLines(req.Services)); err != nil {
			return err
		}
		var err error
		if detail, err = s.repo.GetDetail(ctx, order.ID); err != nil {
			return service.RepoError(err, resource)
		}
		if err := s.notifier.Enqueue(ctx, model.EventTreatmentOrderCreated, detail); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) UpdateOrder(ctx context.Context, current *model.User, id int64, req model.UpdateTreatmentOrderRequest) (*model.TreatmentOrderDetail, error) {
	existing, err := s.GetOrder(ctx, current, id)
	if err != nil {
		return nil, err
	}
	order := &existing.TreatmentOrder
	if err := s.checkRefs(ctx, req.PatientID, req.DoctorID); err != nil {
		return nil, err
	}
	if req.Services != nil {
		if err := s.plans.CheckServices(ctx, serviceIDs(*req.Services)...); err != nil {
			return nil, err
		}
	}

	if req.PatientID != nil {
		order.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		order.CreatedByID = *req.DoctorID
	}
	if req.AppointmentID != nil {
		order.AppointmentID = req.AppointmentID
	}
	if req.VisitDate != nil {
		order.VisitDate = *req.VisitDate
	}
	if req.TotalAmount != nil {
		order.TotalAmount = *req.TotalAmount
	}
	if req.Status != nil {
		order.Status = *req.Status
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, order); err != nil {
			return service.RepoError(err, resource)
		}
		if req.Services != nil {
			if err := s.repo.ReplaceServices(ctx, order.ID, orderLines(*req.Services)); err != nil {
				return service.WriteError(err, "Service")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, current, id)
}

func (s *Service) DeleteOrder(ctx context.Context, current *model.User, id int64) error {
	if _, err := s.GetOrder(ctx, current, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, resource)
	}
	return nil
}

func (s *Service) checkRefs(ctx context.Context, patientID, doctorID *int64) error {
	if patientID != nil {
		if _, err := s.patientRepo.Get(ctx, *patientID); err != nil {
			return service.RepoError(err, "Patient")
		}
	}
	if doctorID != nil {
		if _, err := s.userRepo.Get(ctx, *doctorID); err != nil {
			return service.RepoError(err, "Doctor")
		}
	}
	return nil
}

// Total is the sum of price times quantity over lines
func Total(lines []*model.TreatmentOrderService) float64 {
	var total float64
	for _, l := range lines {
		total += l.ServicePrice * float64(l.Quantity)
	}
	return total
}

func serviceIDs(inputs []model.TreatmentOrderServiceInput) []int64 {
	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ServiceID)
	}
	return ids
}

func orderLines(inputs []model.TreatmentOrderServiceInput) []*model.TreatmentOrderService {
	lines := make([]*model.TreatmentOrderService, 0, len(inputs))
	for _, in := range inputs {
		qty := in.Quantity
		if qty <= 0 {
			qty = 1
		}
		lines = append(lines, &model.TreatmentOrderService{
			ServiceID:    in.ServiceID,
			ServiceName:  in.ServiceName,
			ServicePrice: in.ServicePrice,
			Quantity:     qty,
			ToothNumber:  in.ToothNumber,
			Notes:        in.Notes,
			IsCompleted:  in.IsCompleted,
		})
	}
	return lines
}

func mergeLines(inputs []model.TreatmentOrderServiceInput) []model.OrderServiceLine {
	out := make([]model.OrderServiceLine, 0, len(inputs))
	for _, in := range inputs {
		price := in.ServicePrice
		out = append(out, model.OrderServiceLine{
			ServiceID:    in.ServiceID,
			ToothNumber:  in.ToothNumber,
			ServiceName:  in.ServiceName,
			ServicePrice: &price,
			Quantity:     in.Quantity,
		})
	}
	return out
}
