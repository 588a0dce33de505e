package hrsettings

import (
	"context"
	"log/slog"
)

// RepositoryAPI defines data access for the settings singleton.
type RepositoryAPI interface {
	Get(ctx context.Context) (*HrSettings, error)
	Create(ctx context.Context, settings *HrSettings) error
	Update(ctx context.Context, settings *HrSettings) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the settings row, creating it with defaults on first read.
func (s *Service) Get(ctx context.Context) (*HrSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	settings = Defaults()
	if err := s.repo.Create(ctx, settings); err != nil {
		s.logger.Error("failed to create default hr settings", "error", err)
		return nil, err
	}

	s.logger.Info("created default hr settings")
	return settings, nil
}

// Update replaces the singleton row with the given values.
func (s *Service) Update(ctx context.Context, dto UpdateSettingsDTO) (*HrSettings, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.GracePeriodMinutes = dto.GracePeriodMinutes
	settings.OfficeStart = dto.OfficeStart
	settings.OfficeEnd = dto.OfficeEnd
	settings.LateDeductionRule = dto.LateDeductionRule
	settings.OvertimeEnabled = dto.OvertimeEnabled
	settings.OvertimeRateMultiplier = dto.OvertimeRateMultiplier
	settings.HalfDayHours = dto.HalfDayHours
	settings.FullDayHours = dto.FullDayHours
	settings.WeeklyOffDays = WeekdayList(dto.WeeklyOffDays)

	if err := s.repo.Update(ctx, settings); err != nil {
		s.logger.Error("failed to update hr settings", "error", err)
		return nil, err
	}

	s.logger.Info("hr settings updated",
		"late_deduction_rule", settings.LateDeductionRule,
		"overtime_enabled", settings.OvertimeEnabled,
		"weekly_off_days", []string(settings.WeeklyOffDays))

	return settings, nil
}
