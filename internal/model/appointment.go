package model

import "time"

// Appointment status constants
const (
	AppointmentStatusScheduled  = "scheduled"
	AppointmentStatusConfirmed  = "confirmed"
	AppointmentStatusInProgress = "in_progress"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCancelled  = "cancelled"
	AppointmentStatusNoShow     = "no_show"
)

type Appointment struct {
	Base
	PatientID           int64     `json:"patient_id" db:"patient_id"`
	DoctorID            *int64    `json:"doctor_id" db:"doctor_id"`
	RegistrarID         *int64    `json:"registrar_id" db:"registrar_id"`
	AppointmentDatetime time.Time `json:"appointment_datetime" db:"appointment_datetime"`
	Status              string    `json:"status" db:"status"`
	ServiceType         *string   `json:"service_type" db:"service_type"`
	Notes               *string   `json:"notes" db:"notes"`
}

// AppointmentDetail carries patient and doctor fields for list views
type AppointmentDetail struct {
	Appointment
	PatientName  *string `json:"patient_name" db:"patient_name"`
	PatientPhone *string `json:"patient_phone" db:"patient_phone"`
	PatientIIN   *string `json:"patient_iin" db:"patient_iin"`
	DoctorName   *string `json:"doctor_name" db:"doctor_name"`
}

type AppointmentFilter struct {
	PatientID *int64
	DoctorID  *int64
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Skip      int
	Limit     int
}

type CreateAppointmentRequest struct {
	PatientID           int64     `json:"patient_id" binding:"required"`
	DoctorID            *int64    `json:"doctor_id"`
	AppointmentDatetime time.Time `json:"appointment_datetime" binding:"required"`
	Status              string    `json:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	ServiceType         *string   `json:"service_type"`
	Notes               *string   `json:"notes"`
}

type UpdateAppointmentRequest struct {
	DoctorID            *int64     `json:"doctor_id"`
	AppointmentDatetime *time.Time `json:"appointment_datetime"`
	Status              *string    `json:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	ServiceType         *string    `json:"service_type"`
	Notes               *string    `json:"notes"`
}
