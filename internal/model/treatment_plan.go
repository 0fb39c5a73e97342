package model

import "sort"

type TreatmentPlan struct {
	Base
	PatientID    int64   `json:"patient_id" db:"patient_id"`
	DoctorID     int64   `json:"doctor_id" db:"doctor_id"`
	ClinicID     *int64  `json:"clinic_id" db:"clinic_id"`
	Diagnosis    *string `json:"diagnosis" db:"diagnosis"`
	Notes        *string `json:"notes" db:"notes"`
	TreatedTeeth IntList `json:"treated_teeth" db:"treated_teeth"`
}

// TreatmentPlanService is one planned service on one tooth
type TreatmentPlanService struct {
	ID              int64   `json:"id" db:"id"`
	TreatmentPlanID int64   `json:"treatment_plan_id" db:"treatment_plan_id"`
	ServiceID       int64   `json:"service_id" db:"service_id"`
	ToothID         int     `json:"tooth_id" db:"tooth_id"`
	ServiceName     string  `json:"service_name" db:"service_name"`
	ServicePrice    float64 `json:"service_price" db:"service_price"`
	Quantity        int     `json:"quantity" db:"quantity"`
	IsCompleted     int     `json:"is_completed" db:"is_completed"`
	Notes           *string `json:"notes" db:"notes"`
}

// TreatmentPlanDetail is the API view of a plan with its lines and derived fields
type TreatmentPlanDetail struct {
	TreatmentPlan
	Services      []*TreatmentPlanService `json:"services" db:"-"`
	TeethServices map[int][]int64         `json:"teeth_services" db:"-"`
	SelectedTeeth []int                   `json:"selected_teeth" db:"-"`
	TotalCost     float64                 `json:"total_cost" db:"-"`

	PatientName              *string `json:"patient_name" db:"patient_name"`
	PatientPhone             *string `json:"patient_phone" db:"patient_phone"`
	PatientIIN               *string `json:"patient_iin" db:"patient_iin"`
	PatientBirthDate         *Date   `json:"patient_birth_date" db:"patient_birth_date"`
	PatientAllergies         *string `json:"patient_allergies" db:"patient_allergies"`
	PatientChronicDiseases   *string `json:"patient_chronic_diseases" db:"patient_chronic_diseases"`
	PatientContraindications *string `json:"patient_contraindications" db:"patient_contraindications"`
	PatientSpecialNotes      *string `json:"patient_special_notes" db:"patient_special_notes"`
	DoctorName               *string `json:"doctor_name" db:"doctor_name"`
}

// Summarize fills TeethServices, SelectedTeeth and TotalCost from Services.
func (d *TreatmentPlanDetail) Summarize() {
	d.TeethServices = make(map[int][]int64)
	d.SelectedTeeth = []int{}
	d.TotalCost = 0
	if d.Services == nil {
		d.Services = []*TreatmentPlanService{}
	}
	for _, s := range d.Services {
		if _, ok := d.TeethServices[s.ToothID]; !ok {
			d.SelectedTeeth = append(d.SelectedTeeth, s.ToothID)
		}
		d.TeethServices[s.ToothID] = append(d.TeethServices[s.ToothID], s.ServiceID)
		d.TotalCost += s.ServicePrice * float64(s.Quantity)
	}
	sort.Ints(d.SelectedTeeth)
}

type TreatmentPlanFilter struct {
	PatientID *int64
	DoctorID  *int64
	ClinicID  *int64
	Skip      int
	Limit     int
}

type TreatmentPlanServiceInput struct {
	ServiceID    int64    `json:"service_id" binding:"required"`
	ToothID      *int     `json:"tooth_id" binding:"omitempty,gte=0"`
	ServiceName  *string  `json:"service_name"`
	ServicePrice *float64 `json:"service_price" binding:"omitempty,gte=0"`
	Quantity     int      `json:"quantity" binding:"omitempty,gte=1"`
	IsCompleted  int      `json:"is_completed" binding:"omitempty,oneof=0 1"`
	Notes        *string  `json:"notes"`
}

type CreateTreatmentPlanRequest struct {
	PatientID    int64                       `json:"patient_id" binding:"required"`
	Diagnosis    *string                     `json:"diagnosis"`
	Notes        *string                     `json:"notes"`
	TreatedTeeth []int                       `json:"treated_teeth"`
	Services     []TreatmentPlanServiceInput `json:"services" binding:"dive"`
}

type UpdateTreatmentPlanRequest struct {
	Diagnosis    *string                      `json:"diagnosis"`
	Notes        *string                      `json:"notes"`
	TreatedTeeth []int                        `json:"treated_teeth"`
	Services     *[]TreatmentPlanServiceInput `json:"services"`

	PatientAllergies         *string `json:"patient_allergies"`
	PatientChronicDiseases   *string `json:"patient_chronic_diseases"`
	PatientContraindications *string `json:"patient_contraindications"`
	PatientSpecialNotes      *string `json:"patient_special_notes"`
}

// OrderServiceLine is a treatment order line offered for merging into a plan
type OrderServiceLine struct {
	ServiceID    int64    `json:"service_id" binding:"required"`
	ToothNumber  int      `json:"tooth_number"`
	ServiceName  string   `json:"service_name"`
	ServicePrice *float64 `json:"service_price"`
	Quantity     int      `json:"quantity"`
}

type PlanMergeResult struct {
	Message          string `json:"message"`
	NewServicesAdded int    `json:"new_services_added"`
	TreatmentPlanID  int64  `json:"treatment_plan_id"`
}
