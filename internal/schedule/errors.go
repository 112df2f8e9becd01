package schedule

import "fmt"

// InvalidScheduleError reports an activity that cannot be projected: a missing
// start time or a non-positive interval. The data has to be fixed before the
// call is repeated.
type InvalidScheduleError struct {
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule: %s %s", e.Field, e.Reason)
}
