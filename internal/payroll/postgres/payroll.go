package postgres

import (
	"context"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/payroll"
	"gorm.io/gorm"
)

// PayrollRepository implements payroll.RepositoryAPI using GORM
type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

func (r *PayrollRepository) Create(ctx context.Context, p *payroll.Payroll) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PayrollRepository) GetByID(ctx context.Context, id int64) (*payroll.Payroll, error) {
	var p payroll.Payroll
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrPayrollNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByEmployeeAndPeriod returns nil without error when no row exists; callers
// use that as the idempotency check before generation.
func (r *PayrollRepository) GetByEmployeeAndPeriod(ctx context.Context, employeeID int64, month, year int) (*payroll.Payroll, error) {
	var p payroll.Payroll
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND month = ? AND year = ?", employeeID, month, year).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]*payroll.Payroll, error) {
	var payrolls []*payroll.Payroll
	err := r.db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Order("employee_id ASC").
		Find(&payrolls).Error
	return payrolls, err
}

func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*payroll.Payroll, error) {
	var payrolls []*payroll.Payroll
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC, month DESC").
		Find(&payrolls).Error
	return payrolls, err
}

func (r *PayrollRepository) Update(ctx context.Context, p *payroll.Payroll) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PayrollRepository) CreateAdjustment(ctx context.Context, a *payroll.Adjustment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *PayrollRepository) ListAdjustments(ctx context.Context, payrollID int64) ([]*payroll.Adjustment, error) {
	var adjustments []*payroll.Adjustment
	err := r.db.WithContext(ctx).
		Where("payroll_id = ?", payrollID).
		Order("created_at ASC").
		Find(&adjustments).Error
	return adjustments, err
}
