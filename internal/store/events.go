package store

import (
	"context"
	"fmt"
	"time"

	"babycare-backend/internal/model"
)

func (s *gormStore) CreateEvent(ctx context.Context, e *model.ScheduledEvent) error {
	e.ScheduledTime = e.ScheduledTime.UTC()
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to schedule %s event: %w", e.Type, err)
	}
	return nil
}

// DueEvents returns unsent events scheduled at or before now, oldest first.
func (s *gormStore) DueEvents(ctx context.Context, now time.Time) ([]model.ScheduledEvent, error) {
	var events []model.ScheduledEvent
	err := s.db.WithContext(ctx).
		Where("sent = ? AND scheduled_time <= ?", false, now.UTC()).
		Order("scheduled_time").
		Find(&events).Error
	return events, err
}

func (s *gormStore) MarkEventSent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&model.ScheduledEvent{}).Where("id = ?", id).Update("sent", true).Error
}

// PendingEvent returns the earliest unsent event of a type for one related
// row, or ErrNotFound.
func (s *gormStore) PendingEvent(ctx context.Context, eventType model.EventType, relatedID int64) (*model.ScheduledEvent, error) {
	var e model.ScheduledEvent
	err := s.db.WithContext(ctx).
		Where("type = ? AND related_id = ? AND sent = ?", eventType, relatedID, false).
		Order("scheduled_time").
		First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// CancelEvents retires every pending event of a type for one related row, so
// rescheduling a reminder replaces the previous one.
func (s *gormStore) CancelEvents(ctx context.Context, eventType model.EventType, relatedID int64) error {
	return s.db.WithContext(ctx).Model(&model.ScheduledEvent{}).
		Where("type = ? AND related_id = ? AND sent = ?", eventType, relatedID, false).
		Update("sent", true).Error
}
