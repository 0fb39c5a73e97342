package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type visitRepository struct {
	BaseRepository
}

func NewVisitRepository(base BaseRepository) repository.VisitRepository {
	return &visitRepository{base}
}

const visitColumns = `v.id, v.patient_id, v.doctor_id, v.appointment_id, v.visit_date, v.service_id,
	v.service_name, v.service_price, v.diagnosis, v.treatment_notes, v.status, v.created_at, v.updated_at`

const visitDetailSelect = `
	SELECT ` + visitColumns + `,
		p.full_name AS patient_name, d.full_name AS doctor_name,
		a.appointment_datetime AS appointment_datetime
	FROM visits v
	LEFT JOIN patients p ON p.id = v.patient_id
	LEFT JOIN users d ON d.id = v.doctor_id
	LEFT JOIN appointments a ON a.id = v.appointment_id
`

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (
			patient_id, doctor_id, appointment_id, visit_date, service_id, service_name,
			service_price, diagnosis, treatment_notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = visit.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		visit.PatientID,
		visit.DoctorID,
		visit.AppointmentID,
		visit.VisitDate,
		visit.ServiceID,
		visit.ServiceName,
		visit.ServicePrice,
		visit.Diagnosis,
		visit.TreatmentNotes,
		visit.Status,
		visit.CreatedAt,
		visit.UpdatedAt,
	).Scan(&visit.ID)
	return mapError(err, "create visit")
}

func (r *visitRepository) Get(ctx context.Context, id int64) (*model.Visit, error) {
	var visit model.Visit
	query := `SELECT ` + visitColumns + ` FROM visits v WHERE v.id = $1`
	if err := r.conn(ctx).GetContext(ctx, &visit, query, id); err != nil {
		return nil, mapError(err, "get visit")
	}
	return &visit, nil
}

func (r *visitRepository) GetDetail(ctx context.Context, id int64) (*model.VisitDetail, error) {
	var visit model.VisitDetail
	if err := r.conn(ctx).GetContext(ctx, &visit, visitDetailSelect+` WHERE v.id = $1`, id); err != nil {
		return nil, mapError(err, "get visit")
	}
	return &visit, nil
}

func (r *visitRepository) Update(ctx context.Context, visit *model.Visit) error {
	query := `
		UPDATE visits
		SET service_id = $1, service_name = $2, service_price = $3, diagnosis = $4,
			treatment_notes = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	visit.UpdatedAt = time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query,
		visit.ServiceID,
		visit.ServiceName,
		visit.ServicePrice,
		visit.Diagnosis,
		visit.TreatmentNotes,
		visit.Status,
		visit.UpdatedAt,
		visit.ID,
	)
	if err != nil {
		return mapError(err, "update visit")
	}
	return checkAffected(result, "update visit")
}

func (r *visitRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM visits WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete visit")
	}
	return checkAffected(result, "delete visit")
}

func (r *visitRepository) List(ctx context.Context, filter model.VisitFilter) ([]*model.VisitDetail, int, error) {
	var (
		args       queryArgs
		conditions []string
	)
	if filter.PatientID != nil {
		conditions = append(conditions, "v.patient_id = "+args.add(*filter.PatientID))
	}
	if filter.DoctorID != nil {
		conditions = append(conditions, "v.doctor_id = "+args.add(*filter.DoctorID))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, `SELECT COUNT(*) FROM visits v`+where, args...); err != nil {
		return nil, 0, mapError(err, "count visits")
	}

	query := visitDetailSelect + where + " ORDER BY v.visit_date DESC"
	if filter.Size > 0 {
		query += " OFFSET " + args.add(filter.Offset()) + " LIMIT " + args.add(filter.Size)
	}

	visits := []*model.VisitDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, 0, mapError(err, "list visits")
	}
	return visits, total, nil
}
