package model

import "fmt"

// Topic groups alerts a caregiver can opt in or out of.
type Topic string

const (
	TopicDiapers      Topic = "diapers"
	TopicLactation    Topic = "lactation"
	TopicMeds         Topic = "meds"
	TopicAppointments Topic = "appointments"
)

// Topics lists every alert topic in menu order.
var Topics = []Topic{TopicDiapers, TopicLactation, TopicMeds, TopicAppointments}

// Column returns the alert_preferences column backing the topic.
func (t Topic) Column() (string, error) {
	switch t {
	case TopicDiapers:
		return "alert_diapers", nil
	case TopicLactation:
		return "alert_lactation", nil
	case TopicMeds:
		return "alert_meds", nil
	case TopicAppointments:
		return "alert_appointments", nil
	}
	return "", fmt.Errorf("unknown alert topic %q", t)
}

// AlertPreference records which alerts a caregiver wants to receive.
type AlertPreference struct {
	CaregiverID       int64 `gorm:"primaryKey;autoIncrement:false"`
	AlertDiapers      bool  `gorm:"not null;default:true"`
	AlertLactation    bool  `gorm:"not null;default:true"`
	AlertMeds         bool  `gorm:"not null;default:true"`
	AlertAppointments bool  `gorm:"not null;default:true"`
}

// DefaultPreference returns a preference with every topic enabled.
func DefaultPreference(caregiverID int64) AlertPreference {
	return AlertPreference{
		CaregiverID:       caregiverID,
		AlertDiapers:      true,
		AlertLactation:    true,
		AlertMeds:         true,
		AlertAppointments: true,
	}
}

// Enabled reports whether the topic is switched on.
func (p *AlertPreference) Enabled(t Topic) bool {
	switch t {
	case TopicDiapers:
		return p.AlertDiapers
	case TopicLactation:
		return p.AlertLactation
	case TopicMeds:
		return p.AlertMeds
	case TopicAppointments:
		return p.AlertAppointments
	}
	return false
}
