package hrsettings

import (
	"time"

	"github.com/novadesk/agency-management/internal"
)

// UpdateSettingsDTO carries the admin settings form. All fields are required;
// partial updates are not supported for the singleton row.
type UpdateSettingsDTO struct {
	GracePeriodMinutes     int      `json:"grace_period_minutes"`
	OfficeStart            string   `json:"office_start"`
	OfficeEnd              string   `json:"office_end"`
	LateDeductionRule      int      `json:"late_deduction_rule"`
	OvertimeEnabled        bool     `json:"overtime_enabled"`
	OvertimeRateMultiplier float64  `json:"overtime_rate_multiplier"`
	HalfDayHours           float64  `json:"half_day_hours"`
	FullDayHours           float64  `json:"full_day_hours"`
	WeeklyOffDays          []string `json:"weekly_off_days"`
}

func (d UpdateSettingsDTO) Validate() error {
	if d.GracePeriodMinutes < 0 {
		return internal.NewValidationFieldError("grace_period_minutes", "grace period cannot be negative", internal.ErrCodeValidationFailed)
	}
	if _, err := time.Parse("15:04", d.OfficeStart); err != nil {
		return internal.NewValidationFieldError("office_start", "must be HH:MM", internal.ErrCodeValidationFailed)
	}
	if _, err := time.Parse("15:04", d.OfficeEnd); err != nil {
		return internal.NewValidationFieldError("office_end", "must be HH:MM", internal.ErrCodeValidationFailed)
	}
	if d.LateDeductionRule < 1 {
		return internal.NewValidationFieldError("late_deduction_rule", "must be at least 1", internal.ErrCodeValidationFailed)
	}
	if d.OvertimeRateMultiplier <= 0 {
		return internal.NewValidationFieldError("overtime_rate_multiplier", "must be positive", internal.ErrCodeValidationFailed)
	}
	if d.FullDayHours <= 0 {
		return internal.NewValidationFieldError("full_day_hours", "must be positive", internal.ErrCodeValidationFailed)
	}
	if d.HalfDayHours <= 0 || d.HalfDayHours >= d.FullDayHours {
		return internal.NewValidationFieldError("half_day_hours", "must be positive and below full day hours", internal.ErrCodeValidationFailed)
	}
	for _, day := range d.WeeklyOffDays {
		if !isWeekdayName(day) {
			return internal.NewValidationFieldError("weekly_off_days", "unknown weekday name: "+day, internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

func isWeekdayName(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return true
		}
	}
	return false
}
