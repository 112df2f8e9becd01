package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"babycare-backend/internal/model"
)

// GetSetting returns the stored value for key, or defaultValue when unset.
func (s *gormStore) GetSetting(ctx context.Context, key, defaultValue string) (string, error) {
	var setting model.Setting
	err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultValue, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *gormStore) SetSetting(ctx context.Context, key, value, description string) error {
	setting := model.Setting{Key: key, Value: value, Description: description}
	columns := []string{"value"}
	if description != "" {
		columns = append(columns, "description")
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&setting).Error
}

func (s *gormStore) ListSettings(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := s.db.WithContext(ctx).Order("key").Find(&settings).Error
	return settings, err
}
