package payroll

import (
	"time"

	"github.com/novadesk/agency-management/internal"
)

const (
	StatusDraft = "draft"
	StatusPaid  = "paid"
)

const (
	AdjustmentKindLoan    = "loan"
	AdjustmentKindAdvance = "advance"
)

// fallbackWorkingDays guards the daily-rate division when a month has no
// working days at all (every day configured as off).
const fallbackWorkingDays = 26

// ErrAlreadyGenerated signals that a payroll row already exists for the
// (employee, month, year) period. The batch treats it as a skip, not a failure.
var ErrAlreadyGenerated = internal.NewConflictError("payroll already generated for this period", internal.ErrCodePayrollExists)

// Computation is the engine's output: a fully derived payroll not yet
// persisted.
type Computation struct {
	EmployeeID int64 `json:"employee_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`

	WorkingDays int `json:"working_days"`
	PresentDays int `json:"present_days"`
	AbsentDays  int `json:"absent_days"`
	LateDays    int `json:"late_days"`
	HalfDays    int `json:"half_days"`

	OvertimeHours float64 `json:"overtime_hours"`

	BasicSalary     float64 `json:"basic_salary"`
	TotalAllowances float64 `json:"total_allowances"`
	GrossSalary     float64 `json:"gross_salary"`
	DailyRate       float64 `json:"daily_rate"`
	HourlyRate      float64 `json:"hourly_rate"`

	LateDeduction    float64 `json:"late_deduction"`
	HalfDayDeduction float64 `json:"half_day_deduction"`
	AbsentDeduction  float64 `json:"absent_deduction"`
	LoanDeduction    float64 `json:"loan_deduction"`
	AdvanceDeduction float64 `json:"advance_deduction"`
	TotalDeductions  float64 `json:"total_deductions"`

	OvertimeAmount float64 `json:"overtime_amount"`
	NetSalary      float64 `json:"net_salary"`
}

// Payroll is the persisted record, one row per (employee, month, year).
// Immutable once created except for the draft→paid transition and manual
// adjustment additions.
type Payroll struct {
	ID         int64 `json:"id" gorm:"primaryKey"`
	EmployeeID int64 `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_payroll_employee_period"`
	Month      int   `json:"month" gorm:"not null;uniqueIndex:idx_payroll_employee_period"`
	Year       int   `json:"year" gorm:"not null;uniqueIndex:idx_payroll_employee_period"`

	WorkingDays int `json:"working_days" gorm:"column:working_days"`
	PresentDays int `json:"present_days" gorm:"column:present_days"`
	AbsentDays  int `json:"absent_days" gorm:"column:absent_days"`
	LateDays    int `json:"late_days" gorm:"column:late_days"`
	HalfDays    int `json:"half_days" gorm:"column:half_days"`

	OvertimeHours float64 `json:"overtime_hours" gorm:"column:overtime_hours"`

	BasicSalary     float64 `json:"basic_salary" gorm:"column:basic_salary"`
	TotalAllowances float64 `json:"total_allowances" gorm:"column:total_allowances"`
	GrossSalary     float64 `json:"gross_salary" gorm:"column:gross_salary"`

	LateDeduction    float64 `json:"late_deduction" gorm:"column:late_deduction"`
	HalfDayDeduction float64 `json:"half_day_deduction" gorm:"column:half_day_deduction"`
	AbsentDeduction  float64 `json:"absent_deduction" gorm:"column:absent_deduction"`
	LoanDeduction    float64 `json:"loan_deduction" gorm:"column:loan_deduction"`
	AdvanceDeduction float64 `json:"advance_deduction" gorm:"column:advance_deduction"`
	TotalDeductions  float64 `json:"total_deductions" gorm:"column:total_deductions"`

	OvertimeAmount float64 `json:"overtime_amount" gorm:"column:overtime_amount"`
	NetSalary      float64 `json:"net_salary" gorm:"column:net_salary"`

	Status      string     `json:"status" gorm:"default:draft"`
	PaidAt      *time.Time `json:"paid_at,omitempty" gorm:"column:paid_at"`
	GeneratedBy int64      `json:"generated_by" gorm:"column:generated_by"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Payroll) TableName() string {
	return "payrolls"
}

func (p *Payroll) CanBePaid() bool {
	return p.Status == StatusDraft
}

// Adjustment is a manual loan/advance deduction recorded against an existing
// payroll after generation.
type Adjustment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	PayrollID int64     `json:"payroll_id" gorm:"column:payroll_id;index;not null"`
	Kind      string    `json:"kind" gorm:"not null"`
	Amount    float64   `json:"amount" gorm:"not null"`
	Note      string    `json:"note"`
	CreatedBy int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Adjustment) TableName() string {
	return "payroll_adjustments"
}

func newPayrollFromComputation(c *Computation, actorID int64) *Payroll {
	now := time.Now()
	return &Payroll{
		EmployeeID:       c.EmployeeID,
		Month:            c.Month,
		Year:             c.Year,
		WorkingDays:      c.WorkingDays,
		PresentDays:      c.PresentDays,
		AbsentDays:       c.AbsentDays,
		LateDays:         c.LateDays,
		HalfDays:         c.HalfDays,
		OvertimeHours:    c.OvertimeHours,
		BasicSalary:      c.BasicSalary,
		TotalAllowances:  c.TotalAllowances,
		GrossSalary:      c.GrossSalary,
		LateDeduction:    c.LateDeduction,
		HalfDayDeduction: c.HalfDayDeduction,
		AbsentDeduction:  c.AbsentDeduction,
		LoanDeduction:    c.LoanDeduction,
		AdvanceDeduction: c.AdvanceDeduction,
		TotalDeductions:  c.TotalDeductions,
		OvertimeAmount:   c.OvertimeAmount,
		NetSalary:        c.NetSalary,
		Status:           StatusDraft,
		GeneratedBy:      actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
