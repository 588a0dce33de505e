package postgres

import (
	"context"
	"time"

	"github.com/novadesk/agency-management/internal/hrsettings"
	"gorm.io/gorm"
)

// SettingsRepository implements hrsettings.RepositoryAPI using GORM
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the singleton row, or nil when none exists yet.
func (r *SettingsRepository) Get(ctx context.Context) (*hrsettings.HrSettings, error) {
	var settings hrsettings.HrSettings
	err := r.db.WithContext(ctx).Order("id ASC").First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Create(ctx context.Context, settings *hrsettings.HrSettings) error {
	now := time.Now()
	settings.CreatedAt = now
	settings.UpdatedAt = now
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *SettingsRepository) Update(ctx context.Context, settings *hrsettings.HrSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(settings).Error
}
