package attendance

import (
	"time"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusHalfDay = "half_day"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDay:
		return true
	}
	return false
}

// Record is one attendance row per (employee, calendar date). Rows are
// append-only: check-out and punch corrections mutate, nothing deletes.
type Record struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	EmployeeID          int64      `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_attendance_employee_date"`
	Date                time.Time  `json:"date" gorm:"column:date;type:date;not null;uniqueIndex:idx_attendance_employee_date"`
	Status              string     `json:"status" gorm:"not null"`
	CheckIn             *time.Time `json:"check_in,omitempty" gorm:"column:check_in"`
	CheckOut            *time.Time `json:"check_out,omitempty" gorm:"column:check_out"`
	LateDurationMinutes int        `json:"late_duration_minutes" gorm:"column:late_duration_minutes"`
	CreatedAt           time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "attendance_records"
}

// CountsAsPresent covers both on-time and late arrivals.
func (r *Record) CountsAsPresent() bool {
	return r.Status == StatusPresent || r.Status == StatusLate
}

// HoursWorked returns the span between check-in and check-out, or zero when
// either punch is missing.
func (r *Record) HoursWorked() float64 {
	if r.CheckIn == nil || r.CheckOut == nil {
		return 0
	}
	return r.CheckOut.Sub(*r.CheckIn).Hours()
}

// DateOnly truncates a timestamp to its local calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
