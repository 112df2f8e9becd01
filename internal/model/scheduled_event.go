package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType is the kind of reminder a scheduled event produces.
type EventType string

const (
	EventLactation   EventType = "LACTATION"
	EventMedication  EventType = "MEDICATION"
	EventAppointment EventType = "APPOINTMENT"
	EventResults     EventType = "RESULTS"
	EventCustom      EventType = "CUSTOM"
)

// ScheduledEvent is a reminder waiting to be sent.
type ScheduledEvent struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Type          EventType `gorm:"size:20;not null;index:idx_event_related"`
	RelatedID     int64     `gorm:"index:idx_event_related"`
	ScheduledTime time.Time `gorm:"not null;index"`
	Payload       string    `gorm:"type:text"` // JSON
	Sent          bool      `gorm:"not null;default:false;index"`
	CreatedAt     time.Time
}

// BeforeCreate assigns a random ID.
func (e *ScheduledEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
