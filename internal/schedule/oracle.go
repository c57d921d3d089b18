// Package schedule decides whether a trading point is inside its daily work
// window and how long until the next window-boundary crossing.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

const (
	daySeconds = 24 * 60 * 60

	// retryDelay is returned whenever the schedule is unknown or
	// unparseable, so the caller re-checks shortly instead of erroring.
	retryDelay = 60 * time.Second
)

// Evaluate reports whether the point is working at nowUTC and the time
// until the next open/close transition. The wait is clamped to a minimum of
// one second so callers never busy-loop. Malformed schedules degrade to
// (false, 60s); the function never fails.
func Evaluate(nowUTC time.Time, sched domain.WorkSchedule) (bool, time.Duration) {
	if !sched.IsSet() {
		return false, retryDelay
	}

	start, err := parseHHMM(sched.StartTime)
	if err != nil {
		return false, retryDelay
	}
	end, err := parseHHMM(sched.EndTime)
	if err != nil {
		return false, retryDelay
	}

	nowUTC = nowUTC.UTC()
	localHour := (nowUTC.Hour() + sched.GMTOffset + 24) % 24
	now := localHour*3600 + nowUTC.Minute()*60 + nowUTC.Second()

	working, wait := classify(now, start, end)
	if wait < 1 {
		wait = 1
	}
	return working, time.Duration(wait) * time.Second
}

// classify works in seconds-since-local-midnight. An end before start means
// the window wraps past midnight (an overnight shift).
func classify(now, start, end int) (bool, int) {
	if start <= end {
		switch {
		case now >= start && now < end:
			return true, end - now
		case now < start:
			return false, start - now
		default:
			return false, (daySeconds - now) + start
		}
	}
	// Overnight window, e.g. 22:00-06:00.
	switch {
	case now >= start:
		return true, (daySeconds - now) + end
	case now < end:
		return true, end - now
	default:
		return false, start - now
	}
}

func parseHHMM(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("schedule: malformed time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("schedule: bad hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("schedule: bad minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("schedule: time %q out of range", s)
	}
	return hour*3600 + minute*60, nil
}
