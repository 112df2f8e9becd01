package model

// All returns every model for migrations.
func All() []any {
	return []any{
		&Caregiver{},
		&AlertPreference{},
		&PushSubscription{},
		&Profile{},
		&Treatment{},
		&MedicationLog{},
		&Appointment{},
		&DiaperSize{},
		&DiaperInventory{},
		&DiaperLog{},
		&FeedingLog{},
		&Setting{},
		&ScheduledEvent{},
	}
}
