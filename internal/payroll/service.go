package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/employee"
)

// RepositoryAPI persists payrolls and their adjustments.
type RepositoryAPI interface {
	Create(ctx context.Context, p *Payroll) error
	GetByID(ctx context.Context, id int64) (*Payroll, error)
	GetByEmployeeAndPeriod(ctx context.Context, employeeID int64, month, year int) (*Payroll, error)
	ListByPeriod(ctx context.Context, month, year int) ([]*Payroll, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error)
	Update(ctx context.Context, p *Payroll) error
	CreateAdjustment(ctx context.Context, a *Adjustment) error
	ListAdjustments(ctx context.Context, payrollID int64) ([]*Adjustment, error)
}

// EmployeeListerAPI enumerates employees for the monthly batch.
type EmployeeListerAPI interface {
	ListActive(ctx context.Context) ([]*employee.Employee, error)
}

// BatchResult summarizes a monthly generation run.
type BatchResult struct {
	Month     int `json:"month"`
	Year      int `json:"year"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type Service struct {
	repo      RepositoryAPI
	engine    *Engine
	employees EmployeeListerAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, engine *Engine, employees EmployeeListerAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		employees: employees,
		logger:    logger,
	}
}

// GeneratePayroll computes and persists one payroll. The existence check runs
// before any computation so a duplicate request does no attendance work.
func (s *Service) GeneratePayroll(ctx context.Context, employeeID int64, month, year int, actorID int64) (*Payroll, error) {
	existing, err := s.repo.GetByEmployeeAndPeriod(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyGenerated
	}

	comp, err := s.engine.ComputeEmployeePayroll(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}

	p := newPayrollFromComputation(comp, actorID)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payroll generated",
		"employee_id", employeeID,
		"month", month,
		"year", year,
		"net_salary", p.NetSalary)

	return p, nil
}

// GenerateMonthlyPayroll runs the whole active roster for one period,
// sequentially. Employees with an existing payroll are skipped and employees
// without a salary structure are counted as failures; neither aborts the run,
// so re-running a partially failed batch fills only the gaps.
func (s *Service) GenerateMonthlyPayroll(ctx context.Context, month, year int, actorID int64) (*BatchResult, error) {
	if month < 1 || month > 12 {
		return nil, internal.NewValidationError("month must be between 1 and 12", internal.ErrCodeInvalidPeriod)
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Month: month, Year: year}
	for _, emp := range employees {
		_, err := s.GeneratePayroll(ctx, emp.ID, month, year, actorID)
		switch {
		case err == nil:
			result.Generated++
		case errors.Is(err, ErrAlreadyGenerated):
			result.Skipped++
		default:
			result.Failed++
			s.logger.Warn("payroll generation failed for employee",
				"employee_id", emp.ID,
				"month", month,
				"year", year,
				"error", err)
		}
	}

	s.logger.Info("monthly payroll batch finished",
		"month", month,
		"year", year,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

func (s *Service) GetPayroll(ctx context.Context, id int64) (*Payroll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPeriod(ctx context.Context, month, year int) ([]*Payroll, error) {
	return s.repo.ListByPeriod(ctx, month, year)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error) {
	return s.repo.ListByEmployee(ctx, employeeID)
}

// MarkPaid transitions a draft payroll to paid. Paid is terminal.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*Payroll, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanBePaid() {
		return nil, internal.NewConflictError("payroll is not in draft status", internal.ErrCodeInvalidStatus)
	}

	now := time.Now()
	p.Status = StatusPaid
	p.PaidAt = &now
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddAdjustment records a loan or advance deduction against a draft payroll
// and re-derives the deduction totals and net.
func (s *Service) AddAdjustment(ctx context.Context, payrollID int64, dto CreateAdjustmentDTO, actorID int64) (*Payroll, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, payrollID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusDraft {
		return nil, internal.NewConflictError("adjustments are only allowed on draft payrolls", internal.ErrCodeInvalidStatus)
	}

	adj := &Adjustment{
		PayrollID: payrollID,
		Kind:      dto.Kind,
		Amount:    dto.Amount,
		Note:      dto.Note,
		CreatedBy: actorID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateAdjustment(ctx, adj); err != nil {
		return nil, err
	}

	switch dto.Kind {
	case AdjustmentKindLoan:
		p.LoanDeduction += dto.Amount
	case AdjustmentKindAdvance:
		p.AdvanceDeduction += dto.Amount
	}
	p.TotalDeductions = p.LateDeduction + p.HalfDayDeduction + p.AbsentDeduction +
		p.LoanDeduction + p.AdvanceDeduction
	p.NetSalary = p.GrossSalary + p.OvertimeAmount - p.TotalDeductions
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListAdjustments(ctx context.Context, payrollID int64) ([]*Adjustment, error) {
	if _, err := s.repo.GetByID(ctx, payrollID); err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, payrollID)
}
