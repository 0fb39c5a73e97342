package model

// Service is a clinic catalog entry
type Service struct {
	Base
	Name        string  `json:"name" db:"name"`
	Price       float64 `json:"price" db:"price"`
	Description *string `json:"description" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	ClinicID    *int64  `json:"clinic_id" db:"clinic_id"`
}

type ServiceFilter struct {
	ClinicID   *int64
	ActiveOnly bool
	Skip       int
	Limit      int
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Price       float64 `json:"price" binding:"gte=0"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	ClinicID    *int64  `json:"clinic_id"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}
