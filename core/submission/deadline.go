package submission

import "time"

// Lateness reports how late a submission is relative to the deadline. The
// deadline is normalized into the submission's offset first: operators give
// deadlines in their local timezone while push timestamps carry the
// platform-reported offset. Returns nil when the submission is on time;
// pushing exactly at the deadline is on time.
func Lateness(deadline, submitted time.Time) *time.Duration {
	deadline = deadline.In(submitted.Location())
	if !submitted.After(deadline) {
		return nil
	}
	d := submitted.Sub(deadline)
	return &d
}
