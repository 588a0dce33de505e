package employee

import (
	"time"

	"github.com/novadesk/agency-management/internal"
)

type CreateEmployeeDTO struct {
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	JoinDate     time.Time `json:"join_date"`
	UserID       *int64    `json:"user_id,omitempty"`
}

func (d CreateEmployeeDTO) Validate() error {
	if d.EmployeeCode == "" {
		return internal.NewValidationFieldError("employee_code", "employee code is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if d.JoinDate.IsZero() {
		return internal.NewValidationFieldError("join_date", "join date is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateEmployeeDTO deliberately has no employee_code field: codes are
// immutable once issued.
type UpdateEmployeeDTO struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Department  *string `json:"department,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (d UpdateEmployeeDTO) Validate() error {
	if d.Status != nil && *d.Status != StatusActive && *d.Status != StatusInactive {
		return internal.NewValidationFieldError("status", "status must be active or inactive", internal.ErrCodeInvalidStatus)
	}
	return nil
}

type CreateSalaryStructureDTO struct {
	BasicSalary      float64   `json:"basic_salary"`
	HouseAllowance   float64   `json:"house_allowance"`
	FoodAllowance    float64   `json:"food_allowance"`
	TravelAllowance  float64   `json:"travel_allowance"`
	MedicalAllowance float64   `json:"medical_allowance"`
	EffectiveFrom    time.Time `json:"effective_from"`
}

func (d CreateSalaryStructureDTO) Validate() error {
	if d.BasicSalary <= 0 {
		return internal.NewValidationFieldError("basic_salary", "basic salary must be positive", internal.ErrCodeValidationFailed)
	}
	if d.HouseAllowance < 0 || d.FoodAllowance < 0 || d.TravelAllowance < 0 || d.MedicalAllowance < 0 {
		return internal.NewValidationFieldError("allowances", "allowances cannot be negative", internal.ErrCodeValidationFailed)
	}
	if d.EffectiveFrom.IsZero() {
		return internal.NewValidationFieldError("effective_from", "effective date is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
