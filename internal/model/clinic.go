package model

type Clinic struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Address     *string `json:"address" db:"address"`
	Contacts    *string `json:"contacts" db:"contacts"`
	IsActive    bool    `json:"is_active" db:"is_active"`
}

type CreateClinicRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Contacts    *string `json:"contacts"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateClinicRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Contacts    *string `json:"contacts"`
	IsActive    *bool   `json:"is_active"`
}
