package model

import "time"

// ClinicPatient records a patient's engagement with one clinic
type ClinicPatient struct {
	Base
	ClinicID       int64      `json:"clinic_id" db:"clinic_id"`
	PatientID      int64      `json:"patient_id" db:"patient_id"`
	FirstVisitDate time.Time  `json:"first_visit_date" db:"first_visit_date"`
	LastVisitDate  *time.Time `json:"last_visit_date" db:"last_visit_date"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

// ClinicPatientDetail is a ClinicPatient joined with patient and clinic data
type ClinicPatientDetail struct {
	ClinicPatient
	PatientName      string `json:"patient_name" db:"patient_name"`
	PatientPhone     string `json:"patient_phone" db:"patient_phone"`
	PatientIIN       string `json:"patient_iin" db:"patient_iin"`
	PatientBirthDate Date   `json:"patient_birth_date" db:"patient_birth_date"`
	ClinicName       string `json:"clinic_name" db:"clinic_name"`
}

type ClinicPatientFilter struct {
	ClinicID int64
	DoctorID *int64
	Search   string
	PageSize
}

type ClinicPatientList struct {
	Patients []*ClinicPatientDetail `json:"patients"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	Size     int                    `json:"size"`
}

type UpdateClinicPatientRequest struct {
	LastVisitDate *time.Time `json:"last_visit_date"`
	IsActive      *bool      `json:"is_active"`
}

// DoctorStat is the distinct patient count of one doctor
type DoctorStat struct {
	DoctorID     int64  `json:"doctor_id" db:"doctor_id"`
	DoctorName   string `json:"doctor_name" db:"doctor_name"`
	Role         string `json:"role" db:"role"`
	PatientCount int    `json:"patient_count" db:"patient_count"`
}

// PatientSearchHit is a global patient match annotated with clinic membership
type PatientSearchHit struct {
	Patient
	IsInClinic     bool       `json:"is_in_clinic" db:"is_in_clinic"`
	FirstVisitDate *time.Time `json:"first_visit_date" db:"first_visit_date"`
}
