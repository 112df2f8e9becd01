package model

import "time"

// ProfileType distinguishes babies from adults; only babies track nursery data.
type ProfileType string

const (
	ProfileBaby  ProfileType = "BABY"
	ProfileAdult ProfileType = "ADULT"
)

// Profile is a person whose care is tracked.
type Profile struct {
	ID        int64       `gorm:"primaryKey"`
	Name      string      `gorm:"size:100;not null"`
	Type      ProfileType `gorm:"size:10;not null;default:BABY"`
	BirthDate time.Time   `gorm:"not null"`
	CreatedAt time.Time
}

// IsBaby reports whether the profile tracks diapers and feedings.
func (p *Profile) IsBaby() bool {
	return p.Type == ProfileBaby
}
