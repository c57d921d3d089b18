package domain

import "time"

// EventKind identifies the business meaning of a persisted event.
type EventKind string

const (
	KindAbsence        EventKind = "absence"
	KindClientWait     EventKind = "client_wait"
	KindWorkSession    EventKind = "work_session"
	KindViolationPhoto EventKind = "violation_photo"
	KindPeopleCount    EventKind = "people_count"
)

// Event is the unit persisted to the remote store. Its natural identity is
// (PointID, Kind, Start); writes by that key are idempotent upserts.
// The Measure semantics depend on Kind: minutes absent, minutes waited,
// seconds worked, running violation streak, or people counted.
type Event struct {
	Kind    EventKind
	PointID int
	Start   time.Time
	End     *time.Time
	Measure int
}

// QueuedEvent is an Event held in the local offline buffer, plus the row id
// used to delete it after a confirmed remote write.
type QueuedEvent struct {
	ID int64
	Event
}

// MeasureIn returns the floor of the span between start and end expressed in
// the given unit. Sub-unit spans yield zero, which callers treat as "emit
// nothing" rather than an error.
func MeasureIn(unit time.Duration, start, end time.Time) int {
	if unit <= 0 {
		return 0
	}
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / unit)
}
