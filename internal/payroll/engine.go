package payroll

import (
	"context"
	"math"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/attendance"
	"github.com/novadesk/agency-management/internal/employee"
	"github.com/novadesk/agency-management/internal/hrsettings"
)

// EmployeeSource resolves the employee under computation.
type EmployeeSource interface {
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

// SalarySource resolves the employee's compensation.
type SalarySource interface {
	LatestSalaryStructure(ctx context.Context, employeeID int64) (*employee.SalaryStructure, error)
}

// AttendanceSource resolves attendance rows inside the payroll period.
type AttendanceSource interface {
	RangeForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendance.Record, error)
}

// SettingsSource resolves hr settings; a nil result means no row exists yet
// and the engine falls back to defaults.
type SettingsSource interface {
	Get(ctx context.Context) (*hrsettings.HrSettings, error)
}

// Engine computes a payroll for one employee and period. It is a pure
// function of its sources: no side effects, no persistence, no existence
// check for an already generated record (the service owns that).
type Engine struct {
	employees  EmployeeSource
	salaries   SalarySource
	attendance AttendanceSource
	settings   SettingsSource
}

func NewEngine(employees EmployeeSource, salaries SalarySource, att AttendanceSource, settings SettingsSource) *Engine {
	return &Engine{
		employees:  employees,
		salaries:   salaries,
		attendance: att,
		settings:   settings,
	}
}

// ComputeEmployeePayroll derives the full payroll for (employee, month, year).
func (e *Engine) ComputeEmployeePayroll(ctx context.Context, employeeID int64, month, year int) (*Computation, error) {
	if month < 1 || month > 12 {
		return nil, internal.NewValidationError("month must be between 1 and 12", internal.ErrCodeInvalidPeriod)
	}
	if year < 2000 || year > 2100 {
		return nil, internal.NewValidationError("year out of range", internal.ErrCodeInvalidPeriod)
	}

	if _, err := e.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	// The most recent structure wins even when its effective_from falls after
	// the period under computation, which applies a later raise retroactively.
	// That matches the shipped behavior; see the pinning test before changing.
	structure, err := e.salaries.LatestSalaryStructure(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	settings, err := e.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = hrsettings.Defaults()
	}

	// Local calendar math: building both bounds from calendar components
	// avoids the off-by-one a UTC day conversion would introduce.
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	periodEnd := periodStart.AddDate(0, 1, -1)

	workingDays := 0
	for d := periodStart; !d.After(periodEnd); d = d.AddDate(0, 0, 1) {
		if !settings.WeeklyOffDays.Contains(d.Weekday()) {
			workingDays++
		}
	}

	records, err := e.attendance.RangeForEmployee(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	comp := &Computation{
		EmployeeID:  employeeID,
		Month:       month,
		Year:        year,
		WorkingDays: workingDays,
	}

	fullDayHours := settings.FullDayHours
	if fullDayHours <= 0 {
		fullDayHours = hrsettings.Defaults().FullDayHours
	}

	for _, record := range records {
		switch record.Status {
		case attendance.StatusPresent:
			comp.PresentDays++
		case attendance.StatusLate:
			comp.PresentDays++
			comp.LateDays++
		case attendance.StatusAbsent:
			comp.AbsentDays++
		case attendance.StatusHalfDay:
			comp.HalfDays++
		}

		if settings.OvertimeEnabled {
			// Days missing either punch contribute zero overtime.
			if worked := record.HoursWorked(); worked > fullDayHours {
				comp.OvertimeHours += worked - fullDayHours
			}
		}
	}

	comp.BasicSalary = structure.BasicSalary
	comp.TotalAllowances = structure.HouseAllowance + structure.FoodAllowance +
		structure.TravelAllowance + structure.MedicalAllowance
	comp.GrossSalary = structure.GrossSalary()

	effectiveWorkingDays := workingDays
	if effectiveWorkingDays <= 0 {
		effectiveWorkingDays = fallbackWorkingDays
	}

	comp.DailyRate = structure.BasicSalary / float64(effectiveWorkingDays)
	comp.HourlyRate = comp.DailyRate / fullDayHours

	lateRule := settings.LateDeductionRule
	if lateRule < 1 {
		lateRule = hrsettings.Defaults().LateDeductionRule
	}

	// Block rule: every lateRule late arrivals cost one day's pay, partial
	// blocks cost nothing. Floor division is load-bearing here.
	comp.LateDeduction = float64(comp.LateDays/lateRule) * comp.DailyRate
	comp.HalfDayDeduction = float64(comp.HalfDays) * comp.DailyRate * 0.5
	comp.AbsentDeduction = float64(comp.AbsentDays) * comp.DailyRate

	// Loans and advances enter later as manual adjustments, never at
	// generation time.
	comp.LoanDeduction = 0
	comp.AdvanceDeduction = 0

	comp.TotalDeductions = comp.LateDeduction + comp.HalfDayDeduction +
		comp.AbsentDeduction + comp.LoanDeduction + comp.AdvanceDeduction

	if settings.OvertimeEnabled {
		comp.OvertimeAmount = comp.OvertimeHours * comp.HourlyRate * settings.OvertimeRateMultiplier
	}

	// Net may legitimately go negative; callers surface it as-is.
	comp.NetSalary = comp.GrossSalary + comp.OvertimeAmount - comp.TotalDeductions

	comp.OvertimeHours = round2(comp.OvertimeHours)
	comp.LateDeduction = round2(comp.LateDeduction)
	comp.HalfDayDeduction = round2(comp.HalfDayDeduction)
	comp.AbsentDeduction = round2(comp.AbsentDeduction)
	comp.TotalDeductions = round2(comp.TotalDeductions)
	comp.OvertimeAmount = round2(comp.OvertimeAmount)
	comp.NetSalary = round2(comp.NetSalary)

	return comp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
