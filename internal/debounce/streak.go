package debounce

import (
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// StreakConfig parametrises the consecutive-tick violation counter.
type StreakConfig struct {
	Kind    domain.EventKind
	PointID int

	// Threshold is the number of consecutive violating ticks needed to
	// fire. Values below one are treated as one (fire on every violation).
	Threshold int

	// AuxKey names the tick aux flag that marks a violation. Empty means
	// the primary signal is the violation itself.
	AuxKey string

	// OnFire is the fire-and-forget side effect (evidence capture, audio
	// alert). It runs inline; implementations must not block.
	OnFire func(fires int, at time.Time)
}

// Streak counts consecutive violating ticks and fires exactly once when the
// streak reaches the threshold, then resets so the same streak cannot fire
// again on the next tick. Unlike the timing machines it is frame-windowed,
// not time-windowed.
type Streak struct {
	cfg   StreakConfig
	arm   threshold
	ticks float64
	fires int
}

// NewStreak builds a fresh counter for one sampling session.
func NewStreak(cfg StreakConfig) *Streak {
	if cfg.Threshold < 1 {
		cfg.Threshold = 1
	}
	return &Streak{
		cfg: cfg,
		// The arming tick is the first of the streak, so the trip distance
		// is one short of the configured count.
		arm: threshold{limit: float64(cfg.Threshold - 1)},
	}
}

// Observe feeds one tick. On the tick that completes a streak it triggers
// the side effect and emits an event whose measure is the running count of
// fires this session.
func (s *Streak) Observe(t domain.Tick) *domain.Event {
	s.ticks++
	violation := t.Signal
	if s.cfg.AuxKey != "" {
		violation = t.Flag(s.cfg.AuxKey)
	}

	fired := false
	if s.cfg.Threshold == 1 {
		fired = violation
	} else {
		fired = s.arm.observe(s.ticks, violation)
	}
	if !fired {
		return nil
	}

	s.fires++
	if s.cfg.OnFire != nil {
		s.cfg.OnFire(s.fires, t.At)
	}
	return &domain.Event{
		Kind:    s.cfg.Kind,
		PointID: s.cfg.PointID,
		Start:   t.At,
		Measure: s.fires,
	}
}

// ForceClose resets the counter; an unfinished streak produces nothing.
func (s *Streak) ForceClose(time.Time) *domain.Event {
	s.arm.reset()
	return nil
}
