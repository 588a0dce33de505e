package employee

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee is the HR master record. EmployeeCode is immutable once issued.
type Employee struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       *int64    `json:"user_id,omitempty" gorm:"column:user_id"`
	EmployeeCode string    `json:"employee_code" gorm:"column:employee_code;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	JoinDate     time.Time `json:"join_date" gorm:"column:join_date;type:date"`
	Status       string    `json:"status" gorm:"default:active"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// SalaryStructure is a versioned compensation record. Several rows can exist
// per employee; consumers pick by EffectiveFrom.
type SalaryStructure struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	EmployeeID      int64     `json:"employee_id" gorm:"column:employee_id;index;not null"`
	BasicSalary     float64   `json:"basic_salary" gorm:"column:basic_salary;not null"`
	HouseAllowance  float64   `json:"house_allowance" gorm:"column:house_allowance"`
	FoodAllowance   float64   `json:"food_allowance" gorm:"column:food_allowance"`
	TravelAllowance float64   `json:"travel_allowance" gorm:"column:travel_allowance"`
	MedicalAllowance float64  `json:"medical_allowance" gorm:"column:medical_allowance"`
	EffectiveFrom   time.Time `json:"effective_from" gorm:"column:effective_from;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

// GrossSalary is basic plus every allowance component.
func (s *SalaryStructure) GrossSalary() float64 {
	return s.BasicSalary + s.HouseAllowance + s.FoodAllowance + s.TravelAllowance + s.MedicalAllowance
}
