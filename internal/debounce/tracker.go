package debounce

import (
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// TrackerConfig parametrises a timeout debounce machine.
type TrackerConfig struct {
	Kind    domain.EventKind
	PointID int

	// Timeout is how long the opening condition must hold before the span
	// is confirmed.
	Timeout time.Duration

	// Invert flips the polarity: a false machine confirms spans of signal
	// absence (cashier away from the till); an inverted machine confirms
	// spans of signal presence (chef at the work table).
	Invert bool

	// Unit is the measure granularity of emitted events. Zero means
	// minutes. Spans shorter than one unit are confirmed but not emitted.
	Unit time.Duration
}

// Tracker is the timeout debounce machine. It consumes one boolean signal
// per tick and emits at most one event per tick: the closing event of a
// confirmed span, produced either when the signal flips back or when the
// session is force-closed.
type Tracker struct {
	cfg         TrackerConfig
	pending     threshold
	epoch       time.Time
	confirmedAt *time.Time
}

// NewTracker builds a fresh machine. One Tracker owns the state of exactly
// one camera/sensor stream for one sampling session.
func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.Unit <= 0 {
		cfg.Unit = time.Minute
	}
	return &Tracker{
		cfg:     cfg,
		pending: threshold{limit: cfg.Timeout.Seconds()},
	}
}

// Observe feeds one tick into the machine.
func (tr *Tracker) Observe(t domain.Tick) *domain.Event {
	now := t.At
	if tr.epoch.IsZero() {
		tr.epoch = now
	}

	open := t.Signal == tr.cfg.Invert // the span-opening condition holds
	if !open {
		if tr.confirmedAt != nil {
			ev := tr.emit(*tr.confirmedAt, now)
			tr.confirmedAt = nil
			tr.pending.reset()
			return ev
		}
		tr.pending.reset()
		return nil
	}

	if tr.confirmedAt != nil {
		return nil
	}
	if tr.pending.observe(now.Sub(tr.epoch).Seconds(), true) {
		confirmed := now
		tr.confirmedAt = &confirmed
	}
	return nil
}

// ForceClose synthesizes the closing event for a span still open when the
// sampling session ends. The machine is left reset either way.
func (tr *Tracker) ForceClose(now time.Time) *domain.Event {
	if tr.confirmedAt == nil {
		tr.pending.reset()
		return nil
	}
	ev := tr.emit(*tr.confirmedAt, now)
	tr.confirmedAt = nil
	tr.pending.reset()
	return ev
}

func (tr *Tracker) emit(start, end time.Time) *domain.Event {
	measure := domain.MeasureIn(tr.cfg.Unit, start, end)
	if measure < 1 {
		return nil
	}
	e := end
	return &domain.Event{
		Kind:    tr.cfg.Kind,
		PointID: tr.cfg.PointID,
		Start:   start,
		End:     &e,
		Measure: measure,
	}
}
