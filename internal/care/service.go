// Package care implements the caregiving workflows: caregivers and their
// approval, nursery logs, treatments, appointments and daily reports.
package care

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"babycare-backend/internal/model"
	"babycare-backend/internal/notification"
	"babycare-backend/internal/schedule"
	"babycare-backend/internal/store"
)

var (
	// ErrForbidden is returned when a caregiver lacks the role for an action.
	ErrForbidden = errors.New("forbidden")
	// ErrInactiveCaregiver is returned for caregivers still waiting for approval.
	ErrInactiveCaregiver = errors.New("caregiver is not active")
	// ErrInvalidInput wraps validation failures of request data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTreatmentFinished is returned when a dose is logged for an inactive treatment.
	ErrTreatmentFinished = errors.New("treatment is no longer active")
	// ErrReminderPending is returned when a dose is snoozed before its reminder fired.
	ErrReminderPending = errors.New("dose reminder has not fired yet")
	// ErrAlreadyCompleted is returned when appointment results are stored twice.
	ErrAlreadyCompleted = store.ErrAlreadyCompleted
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Options tunes the reminder offsets.
type Options struct {
	Snooze       time.Duration
	ResultsDelay time.Duration
}

// Service coordinates the store, the schedule projector and the alert sink.
type Service struct {
	store     store.Store
	alerts    notification.Broadcaster
	clock     schedule.Clock
	projector *schedule.Projector
	opts      Options
}

// NewService creates a care service. Day boundaries and displayed times use loc.
func NewService(st store.Store, alerts notification.Broadcaster, clock schedule.Clock, loc *time.Location, opts Options) *Service {
	if opts.Snooze <= 0 {
		opts.Snooze = 15 * time.Minute
	}
	if opts.ResultsDelay <= 0 {
		opts.ResultsDelay = 15 * time.Minute
	}
	return &Service{
		store:     st,
		alerts:    alerts,
		clock:     clock,
		projector: schedule.NewProjector(loc),
		opts:      opts,
	}
}

// Location returns the household time zone.
func (s *Service) Location() *time.Location {
	return s.projector.Location()
}

// Now returns the current time in the household time zone.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.Location())
}

func (s *Service) clockTime(t time.Time) string {
	return t.In(s.Location()).Format("03:04 PM")
}

func (s *Service) dayTime(t time.Time) string {
	return t.In(s.Location()).Format("02/01 03:04 PM")
}

// dayBounds returns the local midnight starting day and the next one.
func (s *Service) dayBounds(day time.Time) (time.Time, time.Time) {
	local := day.In(s.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Location())
	return start, start.AddDate(0, 0, 1)
}

// eventPayload is the JSON stored with a scheduled event.
type eventPayload struct {
	ProfileName string      `json:"profile_name,omitempty"`
	Title       string      `json:"title,omitempty"`
	Body        string      `json:"body,omitempty"`
	Topic       model.Topic `json:"topic,omitempty"`
}

// scheduleEvent replaces any pending reminder of the same kind for relatedID.
func (s *Service) scheduleEvent(ctx context.Context, eventType model.EventType, relatedID int64, at time.Time, payload eventPayload) error {
	if err := s.store.CancelEvents(ctx, eventType, relatedID); err != nil {
		return fmt.Errorf("failed to cancel previous %s reminder: %w", eventType, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := &model.ScheduledEvent{
		Type:          eventType,
		RelatedID:     relatedID,
		ScheduledTime: at,
		Payload:       string(raw),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return err
	}
	log.Printf("Scheduled %s reminder for %d at %s", eventType, relatedID, at.In(s.Location()).Format(time.RFC3339))
	return nil
}

func (s *Service) broadcast(topic model.Topic, title, body string) {
	s.alerts.Broadcast(notification.Alert{Topic: topic, Title: title, Body: body})
}

// caregiverName resolves a display name for messages; unknown ids read as "Usuario".
func (s *Service) caregiverName(ctx context.Context, id int64) string {
	c, err := s.store.GetCaregiver(ctx, id)
	if err != nil {
		return (&model.Caregiver{}).DisplayName()
	}
	return c.DisplayName()
}

func (s *Service) profile(ctx context.Context, id int64) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile %d: %w", id, err)
	}
	return p, nil
}
