package attendance

import (
	"time"

	"github.com/novadesk/agency-management/internal"
)

type ManualEntryDTO struct {
	EmployeeID int64      `json:"employee_id"`
	Date       time.Time  `json:"date"`
	Status     string     `json:"status"`
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
}

func (d ManualEntryDTO) Validate() error {
	if d.EmployeeID <= 0 {
		return internal.NewValidationFieldError("employee_id", "employee id is required", internal.ErrCodeValidationFailed)
	}
	if d.Date.IsZero() {
		return internal.NewValidationFieldError("date", "date is required", internal.ErrCodeInvalidDate)
	}
	if !IsValidStatus(d.Status) {
		return internal.NewValidationFieldError("status", "unknown attendance status", internal.ErrCodeInvalidStatus)
	}
	if d.CheckIn != nil && d.CheckOut != nil && d.CheckOut.Before(*d.CheckIn) {
		return internal.NewValidationFieldError("check_out", "check-out cannot precede check-in", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RangeQuery struct {
	EmployeeID int64
	From       time.Time
	To         time.Time
}
