package postgres

import (
	"context"
	"time"

	"github.com/novadesk/agency-management/internal/attendance"
	"gorm.io/gorm"
)

// AttendanceRepository implements attendance.RepositoryAPI using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByEmployeeAndDate returns nil when no row exists for the pair.
func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	var record attendance.Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) Update(ctx context.Context, record *attendance.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *AttendanceRepository) RangeForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendance.Record, error) {
	var records []*attendance.Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date >= ? AND date <= ?", employeeID, from, to).
		Order("date ASC").
		Find(&records).Error
	return records, err
}
