package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type clinicPatientRepository struct {
	BaseRepository
}

func NewClinicPatientRepository(base BaseRepository) repository.ClinicPatientRepository {
	return &clinicPatientRepository{base}
}

const clinicPatientColumns = `cp.id, cp.clinic_id, cp.patient_id, cp.first_visit_date, cp.last_visit_date,
	cp.is_active, cp.created_at, cp.updated_at`

const clinicPatientDetailSelect = `
	SELECT ` + clinicPatientColumns + `,
		p.full_name AS patient_name, p.phone AS patient_phone, p.iin AS patient_iin,
		p.birth_date AS patient_birth_date, c.name AS clinic_name
	FROM clinic_patients cp
	JOIN patients p ON p.id = cp.patient_id
	JOIN clinics c ON c.id = cp.clinic_id
`

func (r *clinicPatientRepository) Create(ctx context.Context, cp *model.ClinicPatient) error {
	query := `
		INSERT INTO clinic_patients (
			clinic_id, patient_id, first_visit_date, last_visit_date, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	now := time.Now()
	if cp.FirstVisitDate.IsZero() {
		cp.FirstVisitDate = now
	}
	cp.CreatedAt = now
	cp.UpdatedAt = now

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		cp.ClinicID,
		cp.PatientID,
		cp.FirstVisitDate,
		cp.LastVisitDate,
		cp.IsActive,
		cp.CreatedAt,
		cp.UpdatedAt,
	).Scan(&cp.ID)
	return mapError(err, "create clinic patient")
}

func (r *clinicPatientRepository) Get(ctx context.Context, id int64) (*model.ClinicPatient, error) {
	var cp model.ClinicPatient
	query := `SELECT ` + clinicPatientColumns + ` FROM clinic_patients cp WHERE cp.id = $1`
	if err := r.conn(ctx).GetContext(ctx, &cp, query, id); err != nil {
		return nil, mapError(err, "get clinic patient")
	}
	return &cp, nil
}

func (r *clinicPatientRepository) GetByClinicAndPatient(ctx context.Context, clinicID, patientID int64) (*model.ClinicPatient, error) {
	var cp model.ClinicPatient
	query := `SELECT ` + clinicPatientColumns + ` FROM clinic_patients cp WHERE cp.clinic_id = $1 AND cp.patient_id = $2`
	if err := r.conn(ctx).GetContext(ctx, &cp, query, clinicID, patientID); err != nil {
		return nil, mapError(err, "get clinic patient")
	}
	return &cp, nil
}

func (r *clinicPatientRepository) GetDetail(ctx context.Context, id int64) (*model.ClinicPatientDetail, error) {
	var cp model.ClinicPatientDetail
	if err := r.conn(ctx).GetContext(ctx, &cp, clinicPatientDetailSelect+` WHERE cp.id = $1`, id); err != nil {
		return nil, mapError(err, "get clinic patient")
	}
	return &cp, nil
}

func (r *clinicPatientRepository) Update(ctx context.Context, cp *model.ClinicPatient) error {
	query := `
		UPDATE clinic_patients
		SET last_visit_date = $1, is_active = $2, updated_at = $3
		WHERE id = $4
	`
	cp.UpdatedAt = time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query, cp.LastVisitDate, cp.IsActive, cp.UpdatedAt, cp.ID)
	if err != nil {
		return mapError(err, "update clinic patient")
	}
	return checkAffected(result, "update clinic patient")
}

func (r *clinicPatientRepository) List(ctx context.Context, filter model.ClinicPatientFilter) ([]*model.ClinicPatientDetail, int, error) {
	var args queryArgs
	conditions := []string{
		"cp.clinic_id = " + args.add(filter.ClinicID),
		"cp.is_active = TRUE",
	}
	if filter.DoctorID != nil {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.patient_id = cp.patient_id AND a.doctor_id = `+args.add(*filter.DoctorID)+`)`)
	}
	if filter.Search != "" {
		p := args.add(likePattern(filter.Search))
		conditions = append(conditions, "(p.full_name ILIKE "+p+" OR p.phone ILIKE "+p+" OR p.iin ILIKE "+p+")")
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM clinic_patients cp JOIN patients p ON p.id = cp.patient_id` + where
	if err := r.conn(ctx).GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, mapError(err, "count clinic patients")
	}

	query := clinicPatientDetailSelect + where +
		" ORDER BY cp.last_visit_date DESC NULLS LAST, cp.id DESC" +
		" OFFSET " + args.add(filter.Offset()) + " LIMIT " + args.add(filter.Size)

	patients := []*model.ClinicPatientDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, mapError(err, "list clinic patients")
	}
	return patients, total, nil
}

func (r *clinicPatientRepository) DoctorStats(ctx context.Context, clinicID int64) ([]*model.DoctorStat, error) {
	query := `
		SELECT u.id AS doctor_id, u.full_name AS doctor_name, u.role,
			COUNT(DISTINCT a.patient_id) AS patient_count
		FROM users u
		LEFT JOIN appointments a ON a.doctor_id = u.id
		WHERE u.clinic_id = $1 AND u.role IN ('doctor', 'nurse') AND u.is_active = TRUE
		GROUP BY u.id, u.full_name, u.role
		ORDER BY u.full_name
	`
	stats := []*model.DoctorStat{}
	if err := r.conn(ctx).SelectContext(ctx, &stats, query, clinicID); err != nil {
		return nil, mapError(err, "get doctor stats")
	}
	return stats, nil
}

func (r *clinicPatientRepository) SearchPatients(ctx context.Context, clinicID int64, query string, limit int) ([]*model.PatientSearchHit, error) {
	q := `
		SELECT p.id, p.full_name, p.phone, p.iin, p.birth_date, p.allergies, p.chronic_diseases,
			p.contraindications, p.special_notes, p.created_at, p.updated_at,
			COALESCE(cp.is_active, FALSE) AS is_in_clinic,
			cp.first_visit_date
		FROM patients p
		LEFT JOIN clinic_patients cp ON cp.patient_id = p.id AND cp.clinic_id = $1
		WHERE p.full_name ILIKE $2 OR p.phone ILIKE $2 OR p.iin ILIKE $2
		ORDER BY p.full_name
		LIMIT $3
	`
	hits := []*model.PatientSearchHit{}
	if err := r.conn(ctx).SelectContext(ctx, &hits, q, clinicID, likePattern(query), limit); err != nil {
		return nil, mapError(err, "search clinic patients")
	}
	return hits, nil
}

func (r *clinicPatientRepository) SetLastVisit(ctx context.Context, clinicID, patientID int64, at time.Time) error {
	query := `
		UPDATE clinic_patients
		SET last_visit_date = $1, updated_at = NOW()
		WHERE clinic_id = $2 AND patient_id = $3
	`
	_, err := r.conn(ctx).ExecContext(ctx, query, at, clinicID, patientID)
	return mapError(err, "set last visit")
}
