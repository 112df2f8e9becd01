package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"babycare-backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyCompleted is returned when results are stored twice for one appointment.
	ErrAlreadyCompleted = errors.New("appointment already completed")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Caregivers and alert preferences
	CountCaregivers(ctx context.Context) (int64, error)
	CreateCaregiver(ctx context.Context, c *model.Caregiver) error
	GetCaregiver(ctx context.Context, id int64) (*model.Caregiver, error)
	UpdateCaregiver(ctx context.Context, c *model.Caregiver) error
	DeleteCaregiver(ctx context.Context, id int64) error
	FindOwner(ctx context.Context) (*model.Caregiver, error)
	ListCaregivers(ctx context.Context, activeOnly bool) ([]model.Caregiver, error)
	GetPreference(ctx context.Context, caregiverID int64) (*model.AlertPreference, error)
	TogglePreference(ctx context.Context, caregiverID int64, topic model.Topic) (*model.AlertPreference, error)

	// Push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForTopic(ctx context.Context, topic model.Topic) ([]model.PushSubscription, error)
	SubscriptionsForCaregiver(ctx context.Context, caregiverID int64) ([]model.PushSubscription, error)

	// Profiles
	CreateProfile(ctx context.Context, p *model.Profile) error
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	FindProfileByName(ctx context.Context, name string) (*model.Profile, error)

	// Health
	CreateTreatment(ctx context.Context, t *model.Treatment) error
	GetTreatment(ctx context.Context, id int64) (*model.Treatment, error)
	ListActiveTreatments(ctx context.Context, profileID int64) ([]model.Treatment, error)
	SetTreatmentActive(ctx context.Context, id int64, active bool) error
	CreateMedicationLog(ctx context.Context, l *model.MedicationLog) error
	LatestMedicationLog(ctx context.Context, treatmentID int64) (*model.MedicationLog, error)
	MedicationLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.MedicationLog, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	CompleteAppointment(ctx context.Context, a *model.Appointment) error
	UpcomingAppointments(ctx context.Context, profileID int64, from time.Time, limit int) ([]model.Appointment, error)
	PendingAppointmentsBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error)

	// Nursery
	ListDiaperSizes(ctx context.Context, activeOnly bool) ([]model.DiaperSize, error)
	CreateDiaperSize(ctx context.Context, s *model.DiaperSize) error
	ToggleDiaperSize(ctx context.Context, id int64) (*model.DiaperSize, error)
	RecordDiaperChange(ctx context.Context, l *model.DiaperLog) (int, error)
	Restock(ctx context.Context, sizeLabel string, quantity int) (*model.DiaperInventory, error)
	ListInventory(ctx context.Context) ([]model.DiaperInventory, error)
	DiaperLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.DiaperLog, error)
	ImportDiaperLogs(ctx context.Context, logs []model.DiaperLog) error
	CreateFeedingLog(ctx context.Context, l *model.FeedingLog) error
	LatestFeedingLog(ctx context.Context, profileID int64) (*model.FeedingLog, error)
	FeedingLogsBetween(ctx context.Context, profileID int64, from, to time.Time) ([]model.FeedingLog, error)

	// Settings
	GetSetting(ctx context.Context, key, defaultValue string) (string, error)
	SetSetting(ctx context.Context, key, value, description string) error
	ListSettings(ctx context.Context) ([]model.Setting, error)

	// Scheduled events
	CreateEvent(ctx context.Context, e *model.ScheduledEvent) error
	DueEvents(ctx context.Context, now time.Time) ([]model.ScheduledEvent, error)
	MarkEventSent(ctx context.Context, id string) error
	PendingEvent(ctx context.Context, eventType model.EventType, relatedID int64) (*model.ScheduledEvent, error)
	CancelEvents(ctx context.Context, eventType model.EventType, relatedID int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that need ad-hoc queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notFound maps gorm's sentinel onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
