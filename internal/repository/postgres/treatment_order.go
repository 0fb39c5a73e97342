package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type treatmentOrderRepository struct {
	BaseRepository
}

func NewTreatmentOrderRepository(base BaseRepository) repository.TreatmentOrderRepository {
	return &treatmentOrderRepository{base}
}

const treatmentOrderColumns = `o.id, o.patient_id, o.created_by_id, o.appointment_id, o.clinic_id,
	o.visit_date, o.total_amount, o.status, o.created_at`

const treatmentOrderDetailSelect = `
	SELECT ` + treatmentOrderColumns + `,
		COALESCE(p.full_name, '') AS patient_name, COALESCE(p.phone, '') AS patient_phone,
		COALESCE(p.iin, '') AS patient_iin, COALESCE(d.full_name, '') AS doctor_name
	FROM treatment_orders o
	LEFT JOIN patients p ON p.id = o.patient_id
	LEFT JOIN users d ON d.id = o.created_by_id
`

const orderServiceColumns = `id, treatment_order_id, service_id, service_name, service_price,
	quantity, tooth_number, notes, is_completed`

func (r *treatmentOrderRepository) Create(ctx context.Context, order *model.TreatmentOrder, services []*model.TreatmentOrderService) error {
	query := `
		INSERT INTO treatment_orders (
			patient_id, created_by_id, appointment_id, clinic_id, visit_date,
			total_amount, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	order.CreatedAt = time.Now()

	return r.WithinTx(ctx, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRowxContext(ctx, query,
			order.PatientID,
			order.CreatedByID,
			order.AppointmentID,
			order.ClinicID,
			order.VisitDate,
			order.TotalAmount,
			order.Status,
			order.CreatedAt,
		).Scan(&order.ID)
		if err != nil {
			return mapError(err, "create treatment order")
		}
		return r.insertServices(ctx, order.ID, services)
	})
}

func (r *treatmentOrderRepository) insertServices(ctx context.Context, orderID int64, services []*model.TreatmentOrderService) error {
	query := `
		INSERT INTO treatment_order_services (
			treatment_order_id, service_id, service_name, service_price,
			quantity, tooth_number, notes, is_completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	for _, s := range services {
		s.TreatmentOrderID = orderID
		err := r.conn(ctx).QueryRowxContext(ctx, query,
			s.TreatmentOrderID,
			s.ServiceID,
			s.ServiceName,
			s.ServicePrice,
			s.Quantity,
			s.ToothNumber,
			s.Notes,
			s.IsCompleted,
		).Scan(&s.ID)
		if err != nil {
			return mapError(err, "create treatment order service")
		}
	}
	return nil
}

func (r *treatmentOrderRepository) Get(ctx context.Context, id int64) (*model.TreatmentOrder, error) {
	var order model.TreatmentOrder
	query := `SELECT ` + treatmentOrderColumns + ` FROM treatment_orders o WHERE o.id = $1`
	if err := r.conn(ctx).GetContext(ctx, &order, query, id); err != nil {
		return nil, mapError(err, "get treatment order")
	}
	return &order, nil
}

func (r *treatmentOrderRepository) GetDetail(ctx context.Context, id int64) (*model.TreatmentOrderDetail, error) {
	var order model.TreatmentOrderDetail
	if err := r.conn(ctx).GetContext(ctx, &order, treatmentOrderDetailSelect+` WHERE o.id = $1`, id); err != nil {
		return nil, mapError(err, "get treatment order")
	}
	if err := r.attachServices(ctx, []*model.TreatmentOrderDetail{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *treatmentOrderRepository) Update(ctx context.Context, order *model.TreatmentOrder) error {
	query := `
		UPDATE treatment_orders
		SET patient_id = $1, created_by_id = $2, appointment_id = $3, visit_date = $4,
			total_amount = $5, status = $6
		WHERE id = $7
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		order.PatientID,
		order.CreatedByID,
		order.AppointmentID,
		order.VisitDate,
		order.TotalAmount,
		order.Status,
		order.ID,
	)
	if err != nil {
		return mapError(err, "update treatment order")
	}
	return checkAffected(result, "update treatment order")
}

func (r *treatmentOrderRepository) ReplaceServices(ctx context.Context, orderID int64, services []*model.TreatmentOrderService) error {
	return r.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := r.conn(ctx).ExecContext(ctx,
			`DELETE FROM treatment_order_services WHERE treatment_order_id = $1`, orderID); err != nil {
			return mapError(err, "clear treatment order services")
		}
		return r.insertServices(ctx, orderID, services)
	})
}

func (r *treatmentOrderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM treatment_orders WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete treatment order")
	}
	return checkAffected(result, "delete treatment order")
}

func (r *treatmentOrderRepository) List(ctx context.Context, filter model.TreatmentOrderFilter) ([]*model.TreatmentOrderDetail, error) {
	var (
		args       queryArgs
		conditions []string
	)
	if filter.ClinicID != nil {
		conditions = append(conditions, "o.clinic_id = "+args.add(*filter.ClinicID))
	}
	if filter.Search != "" {
		p := args.add(likePattern(filter.Search))
		conditions = append(conditions, "(p.full_name ILIKE "+p+" OR p.phone ILIKE "+p+" OR p.iin ILIKE "+p+")")
	}

	query := treatmentOrderDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC OFFSET " + args.add(filter.Skip) + " LIMIT " + args.add(filter.Limit)

	orders := []*model.TreatmentOrderDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, mapError(err, "list treatment orders")
	}
	if err := r.attachServices(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *treatmentOrderRepository) attachServices(ctx context.Context, orders []*model.TreatmentOrderDetail) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*model.TreatmentOrderDetail, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Services = []*model.TreatmentOrderService{}
	}

	query := `SELECT ` + orderServiceColumns + ` FROM treatment_order_services
		WHERE treatment_order_id = ANY($1) ORDER BY id`
	var services []*model.TreatmentOrderService
	if err := r.conn(ctx).SelectContext(ctx, &services, query, pq.Array(ids)); err != nil {
		return mapError(err, "list treatment order services")
	}
	for _, s := range services {
		if o, ok := byID[s.TreatmentOrderID]; ok {
			o.Services = append(o.Services, s)
		}
	}
	return nil
}
