package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/novadesk/agency-management/internal"
)

// RepositoryAPI defines data access for employees and their salary structures.
type RepositoryAPI interface {
	Create(ctx context.Context, emp *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, limit, offset int) ([]*Employee, error)
	ListActive(ctx context.Context) ([]*Employee, error)
	Update(ctx context.Context, emp *Employee) error

	CreateSalaryStructure(ctx context.Context, structure *SalaryStructure) error
	LatestSalaryStructure(ctx context.Context, employeeID int64) (*SalaryStructure, error)
	ListSalaryStructures(ctx context.Context, employeeID int64) ([]*SalaryStructure, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateEmployee(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	emp := &Employee{
		UserID:       dto.UserID,
		EmployeeCode: dto.EmployeeCode,
		Name:         dto.Name,
		Email:        dto.Email,
		Department:   dto.Department,
		Designation:  dto.Designation,
		JoinDate:     dto.JoinDate,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "employee_code", dto.EmployeeCode)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "employee_code", emp.EmployeeCode)
	return emp, nil
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, limit, offset int) ([]*Employee, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		emp.Name = *dto.Name
	}
	if dto.Email != nil {
		emp.Email = *dto.Email
	}
	if dto.Department != nil {
		emp.Department = *dto.Department
	}
	if dto.Designation != nil {
		emp.Designation = *dto.Designation
	}
	if dto.Status != nil {
		emp.Status = *dto.Status
	}
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	return emp, nil
}

// AddSalaryStructure appends a new versioned compensation row. Older rows are
// never modified.
func (s *Service) AddSalaryStructure(ctx context.Context, employeeID int64, dto CreateSalaryStructureDTO) (*SalaryStructure, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, employeeID); err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	structure := &SalaryStructure{
		EmployeeID:       employeeID,
		BasicSalary:      dto.BasicSalary,
		HouseAllowance:   dto.HouseAllowance,
		FoodAllowance:    dto.FoodAllowance,
		TravelAllowance:  dto.TravelAllowance,
		MedicalAllowance: dto.MedicalAllowance,
		EffectiveFrom:    dto.EffectiveFrom,
		CreatedAt:        time.Now(),
	}

	if err := s.repo.CreateSalaryStructure(ctx, structure); err != nil {
		s.logger.Error("failed to create salary structure", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("salary structure added",
		"employee_id", employeeID,
		"basic_salary", structure.BasicSalary,
		"effective_from", structure.EffectiveFrom)

	return structure, nil
}

func (s *Service) ListSalaryStructures(ctx context.Context, employeeID int64) ([]*SalaryStructure, error) {
	return s.repo.ListSalaryStructures(ctx, employeeID)
}
