package model

import "time"

const TreatmentOrderStatusCompleted = "completed"

// TreatmentOrder is the priced record of services rendered during a visit
type TreatmentOrder struct {
	ID            int64     `json:"id" db:"id"`
	PatientID     int64     `json:"patient_id" db:"patient_id"`
	CreatedByID   int64     `json:"doctor_id" db:"created_by_id"`
	AppointmentID *int64    `json:"appointment_id" db:"appointment_id"`
	ClinicID      *int64    `json:"clinic_id" db:"clinic_id"`
	VisitDate     time.Time `json:"visit_date" db:"visit_date"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type TreatmentOrderService struct {
	ID               int64   `json:"id" db:"id"`
	TreatmentOrderID int64   `json:"-" db:"treatment_order_id"`
	ServiceID        int64   `json:"service_id" db:"service_id"`
	ServiceName      string  `json:"service_name" db:"service_name"`
	ServicePrice     float64 `json:"service_price" db:"service_price"`
	Quantity         int     `json:"quantity" db:"quantity"`
	ToothNumber      int     `json:"tooth_number" db:"tooth_number"`
	Notes            *string `json:"notes" db:"notes"`
	IsCompleted      int     `json:"is_completed" db:"is_completed"`
}

type TreatmentOrderDetail struct {
	TreatmentOrder
	PatientName  string                   `json:"patient_name" db:"patient_name"`
	PatientPhone string                   `json:"patient_phone" db:"patient_phone"`
	PatientIIN   string                   `json:"patient_iin" db:"patient_iin"`
	DoctorName   string                   `json:"doctor_name" db:"doctor_name"`
	Services     []*TreatmentOrderService `json:"services" db:"-"`
}

type TreatmentOrderFilter struct {
	ClinicID *int64
	Search   string
	Skip     int
	Limit    int
}

type TreatmentOrderServiceInput struct {
	ServiceID    int64   `json:"service_id" binding:"required"`
	ServiceName  string  `json:"service_name" binding:"required"`
	ServicePrice float64 `json:"service_price" binding:"gte=0"`
	Quantity     int     `json:"quantity" binding:"gte=1"`
	ToothNumber  int     `json:"tooth_number" binding:"gte=0"`
	Notes        *string `json:"notes"`
	IsCompleted  int     `json:"is_completed" binding:"omitempty,oneof=0 1"`
}

type CreateTreatmentOrderRequest struct {
	PatientID     int64                        `json:"patient_id" binding:"required"`
	DoctorID      int64                        `json:"doctor_id" binding:"required"`
	AppointmentID *int64                       `json:"appointment_id"`
	VisitDate     time.Time                    `json:"visit_date" binding:"required"`
	Services      []TreatmentOrderServiceInput `json:"services" binding:"dive"`
	TotalAmount   float64                      `json:"total_amount" binding:"gte=0"`
	Status        string                       `json:"status"`
}

type UpdateTreatmentOrderRequest struct {
	PatientID     *int64                        `json:"patient_id"`
	DoctorID      *int64                        `json:"doctor_id"`
	AppointmentID *int64                        `json:"appointment_id"`
	VisitDate     *time.Time                    `json:"visit_date"`
	Services      *[]TreatmentOrderServiceInput `json:"services"`
	TotalAmount   *float64                      `json:"total_amount" binding:"omitempty,gte=0"`
	Status        *string                       `json:"status"`
}
