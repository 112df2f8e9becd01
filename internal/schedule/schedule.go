// Package schedule computes due times for recurring care activities such as
// medication treatments and feeding cadences.
//
// Everything in this package is a pure function of its inputs. Callers pass
// the reference time explicitly; nothing here reads a live clock.
package schedule

import (
	"iter"
	"math"
	"time"
)

// Activity is a recurring activity: it starts at Start and repeats every
// Interval until the optional End.
type Activity struct {
	Start    time.Time
	Interval time.Duration
	End      *time.Time
}

// Validate reports whether the activity has the fields the projector needs.
func (a Activity) Validate() error {
	if a.Start.IsZero() {
		return &InvalidScheduleError{Field: "start", Reason: "is required"}
	}
	if a.Interval <= 0 {
		return &InvalidScheduleError{Field: "interval", Reason: "must be positive"}
	}
	return nil
}

// Dose is a single projected occurrence of an activity.
type Dose struct {
	At      time.Time
	Overdue bool
}

// Projector evaluates activities against a single local time zone.
type Projector struct {
	location *time.Location
}

// NewProjector creates a projector that uses loc for day boundaries.
// A nil loc falls back to time.Local.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{location: loc}
}

// Location returns the time zone used for day boundaries.
func (p *Projector) Location() *time.Location {
	return p.location
}

// NextDue returns the next occurrence of a strictly after now.
//
// The occurrence is computed from last (or from the activity start when last
// is nil) plus one interval, then advanced by whole intervals while it is not
// after now. A candidate equal to now counts as already past. ok is false when
// the resulting time would exceed the activity end: the schedule is over.
func (p *Projector) NextDue(a Activity, last *time.Time, now time.Time) (next time.Time, ok bool, err error) {
	if err := a.Validate(); err != nil {
		return time.Time{}, false, err
	}

	base := a.Start
	if last != nil {
		base = *last
	}

	next = catchUp(base.Add(a.Interval), a.Interval, now)
	if a.End != nil && next.After(*a.End) {
		return time.Time{}, false, nil
	}
	return next, true, nil
}

// ProjectToday returns the occurrences of a that are still due on the local
// calendar day of today, starting with the one NextDue would report.
//
// The returned sequence is lazy and can be ranged over any number of times.
// It ends at the first occurrence that falls on a later day or past the
// activity end.
func (p *Projector) ProjectToday(a Activity, last *time.Time, now, today time.Time) (iter.Seq[Dose], error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	y, m, d := today.In(p.location).Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, p.location)

	return func(yield func(Dose) bool) {
		prev := last
		for {
			next, ok, _ := p.NextDue(a, prev, now)
			if !ok || !next.Before(tomorrow) {
				return
			}
			if !yield(Dose{At: next, Overdue: !next.After(now)}) {
				return
			}
			prev = &next
		}
	}, nil
}

// SameDay reports whether a and b fall on the same local calendar day.
func (p *Projector) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(p.location).Date()
	by, bm, bd := b.In(p.location).Date()
	return ay == by && am == bm && ad == bd
}

// HoursToDuration converts a possibly fractional number of hours.
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours * float64(time.Hour)))
}

// catchUp advances candidate by whole intervals until it is after now.
func catchUp(candidate time.Time, interval time.Duration, now time.Time) time.Time {
	if candidate.After(now) {
		return candidate
	}
	// now.Sub saturates for gaps beyond ~290 years, so long gaps take
	// several jumps, each capped below the Duration range.
	maxMissed := time.Duration(math.MaxInt64) / interval
	for !candidate.After(now) {
		missed := min(now.Sub(candidate)/interval+1, maxMissed)
		candidate = candidate.Add(missed * interval)
	}
	return candidate
}
