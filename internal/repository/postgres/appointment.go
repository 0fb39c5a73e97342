package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `a.id, a.patient_id, a.doctor_id, a.registrar_id, a.appointment_datetime,
	a.status, a.service_type, a.notes, a.created_at, a.updated_at`

const appointmentDetailSelect = `
	SELECT ` + appointmentColumns + `,
		p.full_name AS patient_name, p.phone AS patient_phone, p.iin AS patient_iin,
		d.full_name AS doctor_name
	FROM appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN users d ON d.id = a.doctor_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, doctor_id, registrar_id, appointment_datetime,
			status, service_type, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.RegistrarID,
		appointment.AppointmentDatetime,
		appointment.Status,
		appointment.ServiceType,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	).Scan(&appointment.ID)
	return mapError(err, "create appointment")
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`
	if err := r.conn(ctx).GetContext(ctx, &appointment, query, id); err != nil {
		return nil, mapError(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	var appointment model.AppointmentDetail
	if err := r.conn(ctx).GetContext(ctx, &appointment, appointmentDetailSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, mapError(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_datetime = $2, status = $3,
			service_type = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.AppointmentDatetime,
		appointment.Status,
		appointment.ServiceType,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return mapError(err, "update appointment")
	}
	return checkAffected(result, "update appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentDetail, error) {
	var (
		args       queryArgs
		conditions []string
	)
	if filter.PatientID != nil {
		conditions = append(conditions, "a.patient_id = "+args.add(*filter.PatientID))
	}
	if filter.DoctorID != nil {
		conditions = append(conditions, "a.doctor_id = "+args.add(*filter.DoctorID))
	}
	if filter.Status != "" {
		conditions = append(conditions, "a.status = "+args.add(filter.Status))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "a.appointment_datetime >= "+args.add(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "a.appointment_datetime <= "+args.add(*filter.EndDate))
	}

	query := appointmentDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.appointment_datetime OFFSET " + args.add(filter.Skip) + " LIMIT " + args.add(filter.Limit)

	appointments := []*model.AppointmentDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, mapError(err, "list appointments")
	}
	return appointments, nil
}
