package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"babycare-backend/internal/model"
)

func (s *gormStore) CountCaregivers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Caregiver{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count caregivers: %w", err)
	}
	return n, nil
}

// CreateCaregiver stores a caregiver together with a default alert preference.
func (s *gormStore) CreateCaregiver(ctx context.Context, c *model.Caregiver) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create caregiver %d: %w", c.ID, err)
		}
		pref := model.DefaultPreference(c.ID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pref).Error; err != nil {
			return fmt.Errorf("failed to create preferences for caregiver %d: %w", c.ID, err)
		}
		return nil
	})
}

func (s *gormStore) GetCaregiver(ctx context.Context, id int64) (*model.Caregiver, error) {
	var c model.Caregiver
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *gormStore) UpdateCaregiver(ctx context.Context, c *model.Caregiver) error {
	return s.db.WithContext(ctx).Model(c).Select("username", "first_name", "nickname", "role", "active").Updates(c).Error
}

// DeleteCaregiver removes a caregiver along with their preference and subscriptions.
func (s *gormStore) DeleteCaregiver(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("caregiver_id = ?", id).Delete(&model.PushSubscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("caregiver_id = ?", id).Delete(&model.AlertPreference{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Caregiver{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *gormStore) FindOwner(ctx context.Context) (*model.Caregiver, error) {
	var c model.Caregiver
	if err := s.db.WithContext(ctx).Where("role = ?", model.RoleOwner).Order("created_at").First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *gormStore) ListCaregivers(ctx context.Context, activeOnly bool) ([]model.Caregiver, error) {
	var caregivers []model.Caregiver
	q := s.db.WithContext(ctx).Order("created_at")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&caregivers).Error; err != nil {
		return nil, err
	}
	return caregivers, nil
}

// GetPreference returns the caregiver's alert preference, creating the default one if missing.
func (s *gormStore) GetPreference(ctx context.Context, caregiverID int64) (*model.AlertPreference, error) {
	if _, err := s.GetCaregiver(ctx, caregiverID); err != nil {
		return nil, err
	}
	pref := model.DefaultPreference(caregiverID)
	if err := s.db.WithContext(ctx).Where(model.AlertPreference{CaregiverID: caregiverID}).FirstOrCreate(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// TogglePreference flips one topic and returns the updated preference.
func (s *gormStore) TogglePreference(ctx context.Context, caregiverID int64, topic model.Topic) (*model.AlertPreference, error) {
	column, err := topic.Column()
	if err != nil {
		return nil, err
	}
	pref, err := s.GetPreference(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	enabled := !pref.Enabled(topic)
	if err := s.db.WithContext(ctx).Model(&model.AlertPreference{}).
		Where("caregiver_id = ?", caregiverID).
		Update(column, enabled).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle %s for caregiver %d: %w", topic, caregiverID, err)
	}
	return s.GetPreference(ctx, caregiverID)
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "caregiver_id"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// SubscriptionsForTopic returns the subscriptions of active caregivers who want the topic.
func (s *gormStore) SubscriptionsForTopic(ctx context.Context, topic model.Topic) ([]model.PushSubscription, error) {
	column, err := topic.Column()
	if err != nil {
		return nil, err
	}
	var subs []model.PushSubscription
	err = s.db.WithContext(ctx).
		Joins("JOIN caregivers c ON c.id = push_subscriptions.caregiver_id").
		Joins("JOIN alert_preferences ap ON ap.caregiver_id = c.id").
		Where("c.active = ?", true).
		Where(fmt.Sprintf("ap.%s = ?", column), true).
		Find(&subs).Error
	return subs, err
}

func (s *gormStore) SubscriptionsForCaregiver(ctx context.Context, caregiverID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).Where("caregiver_id = ?", caregiverID).Find(&subs).Error
	return subs, err
}

func (s *gormStore) CreateProfile(ctx context.Context, p *model.Profile) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := s.db.WithContext(ctx).Order("id").Find(&profiles).Error
	return profiles, err
}

// FindProfileByName looks a profile up by name, ignoring case.
func (s *gormStore) FindProfileByName(ctx context.Context, name string) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Order("id").First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
