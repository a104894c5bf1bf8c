package session

import "time"

// Status is the derived state of a session's attendance window.
// It is never persisted; it is recomputed from the clock on every evaluation.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
)

// Classify maps a session window and the current instant to a Status.
// Both boundaries are inclusive: now == start and now == end are Active, so a
// zero-duration window is Active at exactly that instant. The three outcomes
// partition the timeline with no gaps or overlaps.
//
// All three instants MUST be in the same timezone representation. Session
// times are stored as local wall-clock strings; if they are resolved in a
// location other than the server clock's, sessions near day boundaries get
// misclassified. Callers resolve both sides through Config.Location() — keep
// it that way. (Known risk inherited from the legacy app, where stored UTC
// times were compared against client-local clocks.)
func Classify(start, end, now time.Time) Status {
	if now.Before(start) {
		return StatusUpcoming
	}
	if !now.After(end) {
		return StatusActive
	}
	return StatusExpired
}
