package model

import (
	"time"

	"gorm.io/gorm"

	"babycare-backend/internal/schedule"
)

// Treatment is a prescription: which medicine, how much, and how often.
type Treatment struct {
	ID             int64      `gorm:"primaryKey"`
	ProfileID      int64      `gorm:"index;not null"`
	MedicineName   string     `gorm:"size:200;not null"`
	Dose           string     `gorm:"size:100;not null"`
	FrequencyHours float64    `gorm:"not null"`
	StartDate      time.Time  `gorm:"not null"`
	DurationDays   int        `gorm:"not null"`
	EndDate        *time.Time
	Active         bool       `gorm:"not null;default:true;index"`
	CreatedByID    *int64
	CreatedAt      time.Time

	// Associations
	Profile Profile         `gorm:"constraint:OnDelete:CASCADE"`
	Logs    []MedicationLog `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave derives the end date from the start date and duration.
func (t *Treatment) BeforeSave(tx *gorm.DB) error {
	if !t.StartDate.IsZero() && t.DurationDays > 0 {
		end := t.StartDate.AddDate(0, 0, t.DurationDays)
		t.EndDate = &end
	}
	return nil
}

// Activity returns the treatment as a recurring activity.
func (t *Treatment) Activity() schedule.Activity {
	return schedule.Activity{
		Start:    t.StartDate,
		Interval: schedule.HoursToDuration(t.FrequencyHours),
		End:      t.EndDate,
	}
}

// MedicationLog records a dose that was given.
type MedicationLog struct {
	ID               int64     `gorm:"primaryKey"`
	TreatmentID      int64     `gorm:"index;not null"`
	AdministeredAt   time.Time `gorm:"index;not null"`
	AdministeredByID *int64
	WasLate          bool `gorm:"not null;default:false"`

	// Associations
	Treatment Treatment
}

// Appointment is a medical visit; once completed it also holds growth data.
type Appointment struct {
	ID                  int64     `gorm:"primaryKey"`
	ProfileID           int64     `gorm:"index;not null"`
	Date                time.Time `gorm:"index;not null"`
	Specialist          string    `gorm:"size:100;not null"`
	Location            string    `gorm:"size:200"`
	Notes               string
	WeightKg            *float64
	HeightCm            *float64
	HeadCircumferenceCm *float64
	Completed           bool `gorm:"not null;default:false"`

	// Associations
	Profile Profile `gorm:"constraint:OnDelete:CASCADE"`
}
