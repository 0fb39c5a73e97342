package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type treatmentPlanRepository struct {
	BaseRepository
}

func NewTreatmentPlanRepository(base BaseRepository) repository.TreatmentPlanRepository {
	return &treatmentPlanRepository{base}
}

const treatmentPlanColumns = `tp.id, tp.patient_id, tp.doctor_id, tp.clinic_id, tp.diagnosis, tp.notes,
	tp.treated_teeth, tp.created_at, tp.updated_at`

const treatmentPlanDetailSelect = `
	SELECT ` + treatmentPlanColumns + `,
		p.full_name AS patient_name, p.phone AS patient_phone, p.iin AS patient_iin,
		p.birth_date AS patient_birth_date, p.allergies AS patient_allergies,
		p.chronic_diseases AS patient_chronic_diseases,
		p.contraindications AS patient_contraindications,
		p.special_notes AS patient_special_notes,
		d.full_name AS doctor_name
	FROM treatment_plans tp
	LEFT JOIN patients p ON p.id = tp.patient_id
	LEFT JOIN users d ON d.id = tp.doctor_id
`

const planServiceColumns = `id, treatment_plan_id, service_id, tooth_id, service_name, service_price,
	quantity, is_completed, notes`

func (r *treatmentPlanRepository) Create(ctx context.Context, plan *model.TreatmentPlan) error {
	query := `
		INSERT INTO treatment_plans (
			patient_id, doctor_id, clinic_id, diagnosis, notes, treated_teeth, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		plan.PatientID,
		plan.DoctorID,
		plan.ClinicID,
		plan.Diagnosis,
		plan.Notes,
		plan.TreatedTeeth,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Scan(&plan.ID)
	return mapError(err, "create treatment plan")
}

func (r *treatmentPlanRepository) Get(ctx context.Context, id int64) (*model.TreatmentPlan, error) {
	var plan model.TreatmentPlan
	query := `SELECT ` + treatmentPlanColumns + ` FROM treatment_plans tp WHERE tp.id = $1`
	if err := r.conn(ctx).GetContext(ctx, &plan, query, id); err != nil {
		return nil, mapError(err, "get treatment plan")
	}
	return &plan, nil
}

func (r *treatmentPlanRepository) GetDetail(ctx context.Context, id int64) (*model.TreatmentPlanDetail, error) {
	var plan model.TreatmentPlanDetail
	if err := r.conn(ctx).GetContext(ctx, &plan, treatmentPlanDetailSelect+` WHERE tp.id = $1`, id); err != nil {
		return nil, mapError(err, "get treatment plan")
	}
	if err := r.attachServices(ctx, []*model.TreatmentPlanDetail{&plan}); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *treatmentPlanRepository) FindByPatientAndClinic(ctx context.Context, patientID, clinicID int64) (*model.TreatmentPlan, error) {
	var plan model.TreatmentPlan
	query := `SELECT ` + treatmentPlanColumns + ` FROM treatment_plans tp
		WHERE tp.patient_id = $1 AND tp.clinic_id = $2
		ORDER BY tp.id LIMIT 1`
	if err := r.conn(ctx).GetContext(ctx, &plan, query, patientID, clinicID); err != nil {
		return nil, mapError(err, "find treatment plan")
	}
	return &plan, nil
}

func (r *treatmentPlanRepository) Update(ctx context.Context, plan *model.TreatmentPlan) error {
	query := `
		UPDATE treatment_plans
		SET doctor_id = $1, diagnosis = $2, notes = $3, treated_teeth = $4, updated_at = $5
		WHERE id = $6
	`
	plan.UpdatedAt = time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query,
		plan.DoctorID,
		plan.Diagnosis,
		plan.Notes,
		plan.TreatedTeeth,
		plan.UpdatedAt,
		plan.ID,
	)
	if err != nil {
		return mapError(err, "update treatment plan")
	}
	return checkAffected(result, "update treatment plan")
}

func (r *treatmentPlanRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM treatment_plans WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete treatment plan")
	}
	return checkAffected(result, "delete treatment plan")
}

func (r *treatmentPlanRepository) List(ctx context.Context, filter model.TreatmentPlanFilter) ([]*model.TreatmentPlanDetail, error) {
	var (
		args       queryArgs
		conditions []string
	)
	if filter.PatientID != nil {
		conditions = append(conditions, "tp.patient_id = "+args.add(*filter.PatientID))
	}
	if filter.DoctorID != nil {
		conditions = append(conditions, "tp.doctor_id = "+args.add(*filter.DoctorID))
	}
	if filter.ClinicID != nil {
		conditions = append(conditions, "tp.clinic_id = "+args.add(*filter.ClinicID))
	}

	query := treatmentPlanDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY tp.created_at DESC"
	if filter.Limit > 0 {
		query += " OFFSET " + args.add(filter.Skip) + " LIMIT " + args.add(filter.Limit)
	}

	plans := []*model.TreatmentPlanDetail{}
	if err := r.conn(ctx).SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, mapError(err, "list treatment plans")
	}
	if err := r.attachServices(ctx, plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// attachServices loads the service lines of all plans in one query.
func (r *treatmentPlanRepository) attachServices(ctx context.Context, plans []*model.TreatmentPlanDetail) error {
	if len(plans) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(plans))
	byID := make(map[int64]*model.TreatmentPlanDetail, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Services = []*model.TreatmentPlanService{}
	}

	query := `SELECT ` + planServiceColumns + ` FROM treatment_plan_services
		WHERE treatment_plan_id = ANY($1) ORDER BY tooth_id, id`
	var services []*model.TreatmentPlanService
	if err := r.conn(ctx).SelectContext(ctx, &services, query, pq.Array(ids)); err != nil {
		return mapError(err, "list treatment plan services")
	}
	for _, s := range services {
		if p, ok := byID[s.TreatmentPlanID]; ok {
			p.Services = append(p.Services, s)
		}
	}
	for _, p := range plans {
		p.Summarize()
	}
	return nil
}

func (r *treatmentPlanRepository) ListServices(ctx context.Context, planID int64) ([]*model.TreatmentPlanService, error) {
	query := `SELECT ` + planServiceColumns + ` FROM treatment_plan_services
		WHERE treatment_plan_id = $1 ORDER BY tooth_id, id`
	services := []*model.TreatmentPlanService{}
	if err := r.conn(ctx).SelectContext(ctx, &services, query, planID); err != nil {
		return nil, mapError(err, "list treatment plan services")
	}
	return services, nil
}

func (r *treatmentPlanRepository) ListServicesByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentPlanService, error) {
	query := `
		SELECT s.id, s.treatment_plan_id, s.service_id, s.tooth_id, s.service_name, s.service_price,
			s.quantity, s.is_completed, s.notes
		FROM treatment_plan_services s
		JOIN treatment_plans tp ON tp.id = s.treatment_plan_id
		WHERE tp.patient_id = $1
		ORDER BY s.tooth_id, s.id
	`
	services := []*model.TreatmentPlanService{}
	if err := r.conn(ctx).SelectContext(ctx, &services, query, patientID); err != nil {
		return nil, mapError(err, "list patient plan services")
	}
	return services, nil
}

func (r *treatmentPlanRepository) AddService(ctx context.Context, service *model.TreatmentPlanService) error {
	query := `
		INSERT INTO treatment_plan_services (
			treatment_plan_id, service_id, tooth_id, service_name, service_price,
			quantity, is_completed, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.conn(ctx).QueryRowxContext(ctx, query,
		service.TreatmentPlanID,
		service.ServiceID,
		service.ToothID,
		service.ServiceName,
		service.ServicePrice,
		service.Quantity,
		service.IsCompleted,
		service.Notes,
	).Scan(&service.ID)
	return mapError(err, "add treatment plan service")
}

func (r *treatmentPlanRepository) ReplaceServices(ctx context.Context, planID int64, services []*model.TreatmentPlanService) error {
	return r.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := r.conn(ctx).ExecContext(ctx,
			`DELETE FROM treatment_plan_services WHERE treatment_plan_id = $1`, planID); err != nil {
			return mapError(err, "clear treatment plan services")
		}
		for _, s := range services {
			s.TreatmentPlanID = planID
			if err := r.AddService(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
}
