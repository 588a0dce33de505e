package postgres

import (
	"context"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/employee"
	"gorm.io/gorm"
)

// EmployeeRepository implements employee.RepositoryAPI using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, emp *employee.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.WithContext(ctx).
		Order("employee_code ASC").
		Limit(limit).
		Offset(offset).
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.WithContext(ctx).
		Where("status = ?", employee.StatusActive).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Update(ctx context.Context, emp *employee.Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

func (r *EmployeeRepository) CreateSalaryStructure(ctx context.Context, structure *employee.SalaryStructure) error {
	return r.db.WithContext(ctx).Create(structure).Error
}

// LatestSalaryStructure returns the single most recent row by effective_from,
// regardless of any payroll period under computation.
func (r *EmployeeRepository) LatestSalaryStructure(ctx context.Context, employeeID int64) (*employee.SalaryStructure, error) {
	var structure employee.SalaryStructure
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		First(&structure).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrNoSalaryStructure
		}
		return nil, err
	}
	return &structure, nil
}

func (r *EmployeeRepository) ListSalaryStructures(ctx context.Context, employeeID int64) ([]*employee.SalaryStructure, error) {
	var structures []*employee.SalaryStructure
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		Find(&structures).Error
	return structures, err
}
