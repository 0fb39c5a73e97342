package model

const (
	ToothServicePending   = "pending"
	ToothServiceCompleted = "completed"
)

// ToothService assigns catalog services to one tooth of a treatment plan
type ToothService struct {
	ID              int64     `json:"id" db:"id"`
	TreatmentPlanID int64     `json:"treatment_plan_id" db:"treatment_plan_id"`
	ToothID         int       `json:"tooth_id" db:"tooth_id"`
	ServiceIDs      Int64List `json:"service_ids" db:"service_ids"`
	ServiceStatuses StatusMap `json:"service_statuses" db:"service_statuses"`
}

type CreateToothServiceRequest struct {
	TreatmentPlanID int64     `json:"treatment_plan_id" binding:"required"`
	ToothID         int       `json:"tooth_id" binding:"required,gte=1"`
	ServiceIDs      []int64   `json:"service_ids" binding:"required"`
	ServiceStatuses StatusMap `json:"service_statuses"`
}

type UpdateToothServiceRequest struct {
	ServiceIDs      []int64   `json:"service_ids"`
	ServiceStatuses StatusMap `json:"service_statuses"`
}
