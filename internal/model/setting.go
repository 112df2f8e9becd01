package model

// Setting is an editable key/value configuration entry.
type Setting struct {
	Key         string `gorm:"primaryKey;size:50"`
	Value       string `gorm:"size:255;not null"`
	Description string `gorm:"size:255"`
}

const (
	SettingLactationInterval = "lactation_interval"
	SettingDiaperThreshold   = "diaper_threshold"

	DefaultLactationInterval = "3.0"
	DefaultDiaperThreshold   = "15"
)
