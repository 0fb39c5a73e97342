package model

import "time"

const (
	VisitStatusCompleted = "completed"
	VisitStatusCancelled = "cancelled"
	VisitStatusNoShow    = "no_show"
)

type Visit struct {
	Base
	PatientID      int64     `json:"patient_id" db:"patient_id"`
	DoctorID       int64     `json:"doctor_id" db:"doctor_id"`
	AppointmentID  *int64    `json:"appointment_id" db:"appointment_id"`
	VisitDate      time.Time `json:"visit_date" db:"visit_date"`
	ServiceID      *int64    `json:"service_id" db:"service_id"`
	ServiceName    *string   `json:"service_name" db:"service_name"`
	ServicePrice   *float64  `json:"service_price" db:"service_price"`
	Diagnosis      *string   `json:"diagnosis" db:"diagnosis"`
	TreatmentNotes *string   `json:"treatment_notes" db:"treatment_notes"`
	Status         string    `json:"status" db:"status"`
}

type VisitDetail struct {
	Visit
	PatientName         *string    `json:"patient_name" db:"patient_name"`
	DoctorName          *string    `json:"doctor_name" db:"doctor_name"`
	AppointmentDatetime *time.Time `json:"appointment_datetime" db:"appointment_datetime"`
}

type VisitFilter struct {
	PatientID *int64
	DoctorID  *int64
	PageSize
}

type VisitList struct {
	Visits []*VisitDetail `json:"visits"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Size   int            `json:"size"`
	Pages  int            `json:"pages"`
}

type CreateVisitRequest struct {
	PatientID      int64     `json:"patient_id" binding:"required"`
	DoctorID       int64     `json:"doctor_id" binding:"required"`
	AppointmentID  *int64    `json:"appointment_id"`
	VisitDate      time.Time `json:"visit_date" binding:"required"`
	ServiceID      *int64    `json:"service_id"`
	ServiceName    *string   `json:"service_name"`
	ServicePrice   *float64  `json:"service_price"`
	Diagnosis      *string   `json:"diagnosis"`
	TreatmentNotes *string   `json:"treatment_notes"`
	Status         string    `json:"status" binding:"omitempty,oneof=completed cancelled no_show"`
}

type UpdateVisitRequest struct {
	ServiceID      *int64   `json:"service_id"`
	ServiceName    *string  `json:"service_name"`
	ServicePrice   *float64 `json:"service_price"`
	Diagnosis      *string  `json:"diagnosis"`
	TreatmentNotes *string  `json:"treatment_notes"`
	Status         *string  `json:"status" binding:"omitempty,oneof=completed cancelled no_show"`
}
