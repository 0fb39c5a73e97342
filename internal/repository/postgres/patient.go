package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

const patientColumns = `id, full_name, phone, iin, birth_date, allergies, chronic_diseases,
	contraindications, special_notes, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			full_name, phone, iin, birth_date, allergies, chronic_diseases,
			contraindications, special_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		patient.FullName,
		patient.Phone,
		patient.IIN,
		patient.BirthDate,
		patient.Allergies,
		patient.ChronicDiseases,
		patient.Contraindications,
		patient.SpecialNotes,
		patient.CreatedAt,
		patient.UpdatedAt,
	).Scan(&patient.ID)
	return mapError(err, "create patient")
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if err := r.conn(ctx).GetContext(ctx, &patient, query, id); err != nil {
		return nil, mapError(err, "get patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByIIN(ctx context.Context, iin string) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE iin = $1`
	if err := r.conn(ctx).GetContext(ctx, &patient, query, iin); err != nil {
		return nil, mapError(err, "get patient by iin")
	}
	return &patient, nil
}

// GetByPhone returns the first patient whose phone equals any of phones.
func (r *patientRepository) GetByPhone(ctx context.Context, phones ...string) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE phone = ANY($1) ORDER BY id LIMIT 1`
	if err := r.conn(ctx).GetContext(ctx, &patient, query, pq.Array(phones)); err != nil {
		return nil, mapError(err, "get patient by phone")
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $1, phone = $2, iin = $3, birth_date = $4, allergies = $5,
			chronic_diseases = $6, contraindications = $7, special_notes = $8, updated_at = $9
		WHERE id = $10
	`
	patient.UpdatedAt = time.Now()

	result, err := r.conn(ctx).ExecContext(ctx, query,
		patient.FullName,
		patient.Phone,
		patient.IIN,
		patient.BirthDate,
		patient.Allergies,
		patient.ChronicDiseases,
		patient.Contraindications,
		patient.SpecialNotes,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return mapError(err, "update patient")
	}
	return checkAffected(result, "update patient")
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete patient")
	}
	return checkAffected(result, "delete patient")
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		where = ` WHERE full_name ILIKE $1 OR iin ILIKE $1 OR phone ILIKE $1`
	}

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+where, args...); err != nil {
		return nil, 0, mapError(err, "count patients")
	}

	args = append(args, filter.Offset(), filter.Size)
	query := `SELECT ` + patientColumns + ` FROM patients` + where +
		` ORDER BY id DESC OFFSET $` + itoa(len(args)-1) + ` LIMIT $` + itoa(len(args))

	patients := []*model.Patient{}
	if err := r.conn(ctx).SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, mapError(err, "list patients")
	}
	return patients, total, nil
}

func (r *patientRepository) SearchByPhone(ctx context.Context, phone string, limit int) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE phone ILIKE $1 ORDER BY full_name LIMIT $2`
	patients := []*model.Patient{}
	if err := r.conn(ctx).SelectContext(ctx, &patients, query, likePattern(phone), limit); err != nil {
		return nil, mapError(err, "search patients by phone")
	}
	return patients, nil
}

func (r *patientRepository) SearchByName(ctx context.Context, name string, limit int) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE full_name ILIKE $1 ORDER BY full_name LIMIT $2`
	patients := []*model.Patient{}
	if err := r.conn(ctx).SelectContext(ctx, &patients, query, likePattern(name), limit); err != nil {
		return nil, mapError(err, "search patients by name")
	}
	return patients, nil
}
