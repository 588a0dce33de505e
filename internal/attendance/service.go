package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novadesk/agency-management/internal"
	"github.com/novadesk/agency-management/internal/hrsettings"
)

// RepositoryAPI defines data access for attendance records.
type RepositoryAPI interface {
	Create(ctx context.Context, record *Record) error
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*Record, error)
	Update(ctx context.Context, record *Record) error
	RangeForEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]*Record, error)
}

// SettingsAPI is the slice of hr settings the attendance rules need.
type SettingsAPI interface {
	Get(ctx context.Context) (*hrsettings.HrSettings, error)
}

type Service struct {
	repo     RepositoryAPI
	settings SettingsAPI
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, settings SettingsAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckIn records the day's arrival for an employee. Arrivals after office
// start plus the grace period are marked late with the overshoot in minutes.
func (s *Service) CheckIn(ctx context.Context, employeeID int64) (*Record, error) {
	now := s.now()
	date := DateOnly(now)

	existing, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewConflictError("attendance already recorded for today", internal.ErrCodeAttendanceExists)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	officeStart, err := officeStartOn(date, settings.OfficeStart)
	if err != nil {
		return nil, err
	}

	status := StatusPresent
	lateMinutes := 0
	deadline := officeStart.Add(time.Duration(settings.GracePeriodMinutes) * time.Minute)
	if now.After(deadline) {
		status = StatusLate
		lateMinutes = int(now.Sub(officeStart).Minutes())
	}

	record := &Record{
		EmployeeID:          employeeID,
		Date:                date,
		Status:              status,
		CheckIn:             &now,
		LateDurationMinutes: lateMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record check-in", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("check-in recorded",
		"employee_id", employeeID,
		"status", status,
		"late_minutes", lateMinutes)

	return record, nil
}

// CheckOut stamps the day's departure on the existing record.
func (s *Service) CheckOut(ctx context.Context, employeeID int64) (*Record, error) {
	now := s.now()
	date := DateOnly(now)

	record, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.NewNotFoundError("no check-in found for today", internal.ErrCodeAttendanceNotFound)
	}
	if record.CheckOut != nil {
		return nil, internal.NewConflictError("already checked out today", internal.ErrCodeAttendanceExists)
	}

	record.CheckOut = &now
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to record check-out", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("check-out recorded", "employee_id", employeeID, "hours_worked", record.HoursWorked())
	return record, nil
}

// ManualEntry lets HR insert or correct a day's record. Existing rows are
// updated in place, keeping the one-row-per-day constraint.
func (s *Service) ManualEntry(ctx context.Context, dto ManualEntryDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	date := DateOnly(dto.Date)
	now := s.now()

	record, err := s.repo.GetByEmployeeAndDate(ctx, dto.EmployeeID, date)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &Record{
			EmployeeID: dto.EmployeeID,
			Date:       date,
			CreatedAt:  now,
		}
	}

	record.Status = dto.Status
	record.CheckIn = dto.CheckIn
	record.CheckOut = dto.CheckOut
	record.UpdatedAt = now

	if record.ID == 0 {
		err = s.repo.Create(ctx, record)
	} else {
		err = s.repo.Update(ctx, record)
	}
	if err != nil {
		s.logger.Error("failed to save manual attendance entry", "error", err, "employee_id", dto.EmployeeID)
		return nil, err
	}

	return record, nil
}

// Range returns all records for an employee between two dates inclusive.
func (s *Service) Range(ctx context.Context, q RangeQuery) ([]*Record, error) {
	if q.To.Before(q.From) {
		return nil, internal.NewValidationError("range end precedes range start", internal.ErrCodeInvalidDate)
	}
	return s.repo.RangeForEmployee(ctx, q.EmployeeID, DateOnly(q.From), DateOnly(q.To))
}

func officeStartOn(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid office start %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
