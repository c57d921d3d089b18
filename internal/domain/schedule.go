package domain

// WorkSchedule is the daily work window of a trading point. Times are
// "HH:MM" strings in point-local time; GMTOffset is a plain integer number
// of hours added to UTC, not a full timezone. A zero value (unset times)
// means the schedule is not yet known.
type WorkSchedule struct {
	StartTime string
	EndTime   string
	GMTOffset int
}

// IsSet reports whether both window boundaries are present.
func (s WorkSchedule) IsSet() bool {
	return s.StartTime != "" && s.EndTime != ""
}
