package payroll

import (
	"github.com/novadesk/agency-management/internal"
)

type GeneratePayrollDTO struct {
	EmployeeID int64 `json:"employee_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
}

func (d GeneratePayrollDTO) Validate() error {
	if d.EmployeeID <= 0 {
		return internal.NewValidationFieldError("employee_id", "employee_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Month < 1 || d.Month > 12 {
		return internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidPeriod)
	}
	if d.Year < 2000 || d.Year > 2100 {
		return internal.NewValidationFieldError("year", "year out of range", internal.ErrCodeInvalidPeriod)
	}
	return nil
}

type GenerateMonthlyDTO struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d GenerateMonthlyDTO) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return internal.NewValidationFieldError("month", "month must be between 1 and 12", internal.ErrCodeInvalidPeriod)
	}
	if d.Year < 2000 || d.Year > 2100 {
		return internal.NewValidationFieldError("year", "year out of range", internal.ErrCodeInvalidPeriod)
	}
	return nil
}

type CreateAdjustmentDTO struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

func (d CreateAdjustmentDTO) Validate() error {
	if d.Kind != AdjustmentKindLoan && d.Kind != AdjustmentKindAdvance {
		return internal.NewValidationFieldError("kind", "kind must be loan or advance", internal.ErrCodeValidationFailed)
	}
	if d.Amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}
