package model

import "time"

// Role is the access level of a caregiver.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleGuest Role = "GUEST"
)

// Caregiver is a family member who logs events and receives alerts.
// ID is the identifier of the user in the chat front-end.
type Caregiver struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Username  string `gorm:"size:255"`
	FirstName string `gorm:"size:255"`
	Nickname  string `gorm:"size:50"`
	Role      Role   `gorm:"size:10;not null;default:GUEST"`
	Active    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time

	// Associations
	Preference    *AlertPreference   `gorm:"constraint:OnDelete:CASCADE"`
	Subscriptions []PushSubscription `gorm:"constraint:OnDelete:CASCADE"`
}

// DisplayName returns the name used in broadcast messages.
func (c *Caregiver) DisplayName() string {
	switch {
	case c.Nickname != "":
		return c.Nickname
	case c.FirstName != "":
		return c.FirstName
	default:
		return "Usuario"
	}
}
