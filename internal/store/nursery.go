package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"babycare-backend/internal/model"
)

func (s *gormStore) ListDiaperSizes(ctx context.Context, activeOnly bool) ([]model.DiaperSize, error) {
	var sizes []model.DiaperSize
	q := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&sizes).Error
	return sizes, err
}

func (s *gormStore) CreateDiaperSize(ctx context.Context, size *model.DiaperSize) error {
	return s.db.WithContext(ctx).Create(size).Error
}

func (s *gormStore) ToggleDiaperSize(ctx context.Context, id int64) (*model.DiaperSize, error) {
	var size model.DiaperSize
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&size, id).Error; err != nil {
			return notFound(err)
		}
		size.Active = !size.Active
		return tx.Model(&size).Update("active", size.Active).Error
	})
	if err != nil {
		return nil, err
	}
	return &size, nil
}

// RecordDiaperChange logs a change and takes one diaper of that size out of
// stock. It returns the remaining stock, which never drops below zero.
func (s *gormStore) RecordDiaperChange(ctx context.Context, l *model.DiaperLog) (int, error) {
	var remaining int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var size model.DiaperSize
		if err := tx.Where("label = ?", l.SizeLabel).First(&size).Error; err != nil {
			return fmt.Errorf("diaper size %q: %w", l.SizeLabel, notFound(err))
		}

		if err := tx.Create(l).Error; err != nil {
			return fmt.Errorf("failed to create diaper log: %w", err)
		}

		inv, err := inventoryFor(tx, size.ID)
		if err != nil {
			return err
		}
		if inv.Quantity > 0 {
			inv.Quantity--
			if err := tx.Model(inv).Update("quantity", inv.Quantity).Error; err != nil {
				return fmt.Errorf("failed to update stock of %s: %w", size.Label, err)
			}
		}
		remaining = inv.Quantity
		return nil
	})
	return remaining, err
}

// Restock adds quantity diapers of the given size.
func (s *gormStore) Restock(ctx context.Context, sizeLabel string, quantity int) (*model.DiaperInventory, error) {
	var inv *model.DiaperInventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var size model.DiaperSize
		if err := tx.Where("label = ?", sizeLabel).First(&size).Error; err != nil {
			return fmt.Errorf("diaper size %q: %w", sizeLabel, notFound(err))
		}

		var err error
		inv, err = inventoryFor(tx, size.ID)
		if err != nil {
			return err
		}
		inv.Quantity += quantity
		inv.LastRestock = time.Now().UTC()
		if err := tx.Model(inv).Updates(map[string]any{
			"quantity":     inv.Quantity,
			"last_restock": inv.LastRestock,
		}).Error; err != nil {
			return fmt.Errorf("failed to restock %s: %w", sizeLabel, err)
		}
		inv.Size = size
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// inventoryFor loads the inventory row of a size, creating an empty one.
func inventoryFor(tx *gorm.DB, sizeID int64) (*model.DiaperInventory, error) {
	var inv model.DiaperInventory
	err := tx.Where("size_id = ?", sizeID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = model.DiaperInventory{SizeID: sizeID, LastRestock: time.Now().UTC()}
		if err := tx.Omit("Size").Create(&inv).Error; err != nil {
			return nil, fmt.Errorf("failed to create inventory for size %d: %w", sizeID, err)
		}
		return &inv, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *gormStore) ListInventory(ctx context.Context) ([]model.DiaperInventory, error) {
	var inv []model.DiaperInventory
	err := s.db.WithContext(ctx).Preload("Size").Order("size_id").Find(&inv).Error
	return inv, err
}

func (s *gormStore) DiaperLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.DiaperLog, error) {
	var logs []model.DiaperLog
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND time >= ? AND time < ?", profileID, from.UTC(), to.UTC()).
		Order("time").
		Find(&logs).Error
	return logs, err
}

// ImportDiaperLogs stores historical changes in one transaction without
// touching the inventory.
func (s *gormStore) ImportDiaperLogs(ctx context.Context, logs []model.DiaperLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(logs, 100).Error
	})
}

func (s *gormStore) CreateFeedingLog(ctx context.Context, l *model.FeedingLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}

// LatestFeedingLog returns the feeding that ended last, or ErrNotFound.
func (s *gormStore) LatestFeedingLog(ctx context.Context, profileID int64) (*model.FeedingLog, error) {
	var l model.FeedingLog
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("end_time DESC").
		First(&l).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (s *gormStore) FeedingLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.FeedingLog, error) {
	var logs []model.FeedingLog
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND start_time >= ? AND start_time < ?", profileID, from.UTC(), to.UTC()).
		Order("start_time").
		Find(&logs).Error
	return logs, err
}
