package model

import "time"

// DiaperSize is a configurable diaper size label (RN, P, M, G...).
type DiaperSize struct {
	ID     int64  `gorm:"primaryKey"`
	Label  string `gorm:"uniqueIndex;size:10;not null"`
	Active bool   `gorm:"not null;default:true"`
	Order  int    `gorm:"not null;default:0"`
}

// DiaperInventory is the remaining stock of one size.
type DiaperInventory struct {
	ID          int64 `gorm:"primaryKey"`
	SizeID      int64 `gorm:"uniqueIndex;not null"`
	Quantity    int   `gorm:"not null;default:0"`
	LastRestock time.Time

	// Associations
	Size DiaperSize `gorm:"constraint:OnDelete:CASCADE"`
}

// WasteType is what a diaper change contained.
type WasteType string

const (
	WastePee  WasteType = "PEE"
	WastePoo  WasteType = "POO"
	WasteBoth WasteType = "BOTH"
)

// Valid reports whether w is a known waste type.
func (w WasteType) Valid() bool {
	return w == WastePee || w == WastePoo || w == WasteBoth
}

// DiaperLog records a diaper change.
type DiaperLog struct {
	ID         int64     `gorm:"primaryKey"`
	ProfileID  int64     `gorm:"index;not null"`
	ReporterID *int64
	Time       time.Time `gorm:"index;not null"`
	WasteType  WasteType `gorm:"size:10;not null"`
	SizeLabel  string    `gorm:"size:20;not null"` // copied so history survives size removal
	Notes      string    `gorm:"size:255"`
}

// FeedingLog records a feeding session.
type FeedingLog struct {
	ID          int64     `gorm:"primaryKey"`
	ProfileID   int64     `gorm:"index;not null"`
	ReporterID  *int64
	StartTime   time.Time `gorm:"index;not null"`
	EndTime     time.Time `gorm:"index;not null"`
	Notes       string
	ManualEntry bool `gorm:"not null;default:false"`
}

// DurationMinutes returns the whole minutes the session lasted.
func (f *FeedingLog) DurationMinutes() int {
	if f.EndTime.Before(f.StartTime) {
		return 0
	}
	return int(f.EndTime.Sub(f.StartTime) / time.Minute)
}
