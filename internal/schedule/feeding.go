package schedule

import "time"

// FeedingStatus describes when the next feeding is expected.
type FeedingStatus struct {
	At      time.Time
	Overdue bool
}

// FeedingDue returns the feeding expected interval after the last feeding
// ended. Unlike NextDue it does not catch up: a missed feeding stays overdue
// until someone logs one.
func FeedingDue(lastEnd time.Time, interval time.Duration, now time.Time) (FeedingStatus, error) {
	if lastEnd.IsZero() {
		return FeedingStatus{}, &InvalidScheduleError{Field: "last feeding", Reason: "is required"}
	}
	if interval <= 0 {
		return FeedingStatus{}, &InvalidScheduleError{Field: "interval", Reason: "must be positive"}
	}
	at := lastEnd.Add(interval)
	return FeedingStatus{At: at, Overdue: at.Before(now)}, nil
}
