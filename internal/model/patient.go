package model

// Patient is shared across clinics and linked to them through ClinicPatient
type Patient struct {
	Base
	FullName          string  `json:"full_name" db:"full_name"`
	Phone             string  `json:"phone" db:"phone"`
	IIN               string  `json:"iin" db:"iin"`
	BirthDate         Date    `json:"birth_date" db:"birth_date"`
	Allergies         *string `json:"allergies" db:"allergies"`
	ChronicDiseases   *string `json:"chronic_diseases" db:"chronic_diseases"`
	Contraindications *string `json:"contraindications" db:"contraindications"`
	SpecialNotes      *string `json:"special_notes" db:"special_notes"`
}

type PatientFilter struct {
	Search string
	PageSize
}

type PatientList struct {
	Patients []*Patient `json:"patients"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
}

type CreatePatientRequest struct {
	FullName          string  `json:"full_name" binding:"required,min=1,max=255"`
	Phone             string  `json:"phone" binding:"required,phone"`
	IIN               string  `json:"iin" binding:"required,iin"`
	BirthDate         Date    `json:"birth_date" binding:"required"`
	Allergies         *string `json:"allergies"`
	ChronicDiseases   *string `json:"chronic_diseases"`
	Contraindications *string `json:"contraindications"`
	SpecialNotes      *string `json:"special_notes"`
}

type UpdatePatientRequest struct {
	FullName          *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Phone             *string `json:"phone" binding:"omitempty,phone"`
	IIN               *string `json:"iin" binding:"omitempty,iin"`
	BirthDate         *Date   `json:"birth_date"`
	Allergies         *string `json:"allergies"`
	ChronicDiseases   *string `json:"chronic_diseases"`
	Contraindications *string `json:"contraindications"`
	SpecialNotes      *string `json:"special_notes"`
}

type PatientSearchRequest struct {
	Query string `json:"query" binding:"required,min=1"`
}
