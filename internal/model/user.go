package model

// Role constants
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleNurse     = "nurse"
	RoleRegistrar = "registrar"
	RolePatient   = "patient"
)

// Role groups used by route guards
var (
	AdminRoles           = []string{RoleAdmin}
	MedicalStaffRoles    = []string{RoleAdmin, RoleDoctor, RoleNurse}
	RegistrarOrAboveRole = []string{RoleAdmin, RoleDoctor, RoleNurse, RoleRegistrar}
)

// User represents a clinic staff member or patient account
type User struct {
	Base
	FullName     string `json:"full_name" db:"full_name"`
	Phone        string `json:"phone" db:"phone"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
	ClinicID     *int64 `json:"clinic_id" db:"clinic_id"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// InClinic reports whether the user belongs to the given clinic.
func (u *User) InClinic(clinicID *int64) bool {
	return u.ClinicID != nil && clinicID != nil && *u.ClinicID == *clinicID
}

// UserSummary is the public projection embedded in login responses
type UserSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	ClinicID *int64 `json:"clinic_id"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		ClinicID: u.ClinicID,
	}
}

type UserFilter struct {
	ClinicID *int64
	Roles    []string
	Active   *bool
	Skip     int
	Limit    int
}

type CreateUserRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=255"`
	Phone    string `json:"phone" binding:"required,phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin doctor nurse registrar patient"`
	ClinicID *int64 `json:"clinic_id"`
	IsActive *bool  `json:"is_active"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin doctor nurse registrar patient"`
	ClinicID *int64  `json:"clinic_id"`
	IsActive *bool   `json:"is_active"`
}
