package hrsettings

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// WeekdayList is stored as a comma separated list of weekday names
// ("Friday,Saturday"). Kept as its own type so GORM can scan it from both
// postgres and the sqlite test driver.
type WeekdayList []string

func (l WeekdayList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

func (l *WeekdayList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = split(v)
		return nil
	case []byte:
		*l = split(string(v))
		return nil
	}
	return fmt.Errorf("unsupported type for WeekdayList: %T", value)
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (l WeekdayList) Contains(weekday time.Weekday) bool {
	name := weekday.String()
	for _, d := range l {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// HrSettings is the single process-wide attendance/payroll configuration row.
type HrSettings struct {
	ID                     int64       `json:"id" gorm:"primaryKey"`
	GracePeriodMinutes     int         `json:"grace_period_minutes" gorm:"column:grace_period_minutes"`
	OfficeStart            string      `json:"office_start" gorm:"column:office_start"`
	OfficeEnd              string      `json:"office_end" gorm:"column:office_end"`
	LateDeductionRule      int         `json:"late_deduction_rule" gorm:"column:late_deduction_rule"`
	OvertimeEnabled        bool        `json:"overtime_enabled" gorm:"column:overtime_enabled"`
	OvertimeRateMultiplier float64     `json:"overtime_rate_multiplier" gorm:"column:overtime_rate_multiplier"`
	HalfDayHours           float64     `json:"half_day_hours" gorm:"column:half_day_hours"`
	FullDayHours           float64     `json:"full_day_hours" gorm:"column:full_day_hours"`
	WeeklyOffDays          WeekdayList `json:"weekly_off_days" gorm:"column:weekly_off_days;type:text"`
	CreatedAt              time.Time   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt              time.Time   `json:"updated_at" gorm:"column:updated_at"`
}

func (HrSettings) TableName() string {
	return "hr_settings"
}

// Defaults returns the settings applied when no row exists yet.
func Defaults() *HrSettings {
	return &HrSettings{
		GracePeriodMinutes:     15,
		OfficeStart:            "09:00",
		OfficeEnd:              "17:00",
		LateDeductionRule:      3,
		OvertimeEnabled:        false,
		OvertimeRateMultiplier: 1.5,
		HalfDayHours:           4,
		FullDayHours:           8,
		WeeklyOffDays:          WeekdayList{"Friday"},
	}
}
