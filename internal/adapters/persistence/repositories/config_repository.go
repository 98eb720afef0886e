package repositories

import (
	"context"

	"campushub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// configRepository implements ConfigRepository over the system_configs table
type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

// Get reads a single config value by key
func (r *configRepository) Get(ctx context.Context, key string) (string, error) {
	var cfg models.SystemConfig
	err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		return "", err
	}
	return cfg.Value, nil
}

// Set writes a config value, creating the row if it does not exist
func (r *configRepository) Set(ctx context.Context, key, value string) error {
	var cfg models.SystemConfig
	err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(&models.SystemConfig{Key: key, Value: value}).Error
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.SystemConfig{}).
		Where("config_key = ?", key).
		Update("config_value", value).Error
}

// All reads every config row (used by the cache bulk refresh)
func (r *configRepository) All(ctx context.Context) ([]*models.SystemConfig, error) {
	var configs []*models.SystemConfig
	if err := r.db.WithContext(ctx).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}
