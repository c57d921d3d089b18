package debounce

import (
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// ReporterConfig parametrises the periodic visitor count reporter.
type ReporterConfig struct {
	PointID int

	// Every is the reporting period. The counter accumulates new-visitor
	// deltas from the tick aux payload and emits one event per period.
	Every time.Duration
}

// Reporter accumulates unique-visitor deltas and emits a people-count event
// once per reporting period, then starts the next period from zero. Periods
// are anchored to the wall clock, not to the session start, so the hourly
// default buckets counts per hour regardless of when sampling began. Point
// offsets are whole hours, which makes UTC hour boundaries point-local hour
// boundaries too. Periods that saw nobody emit nothing.
type Reporter struct {
	cfg    ReporterConfig
	window threshold
	epoch  time.Time
	count  int
}

// NewReporter builds a fresh reporter for one sampling session.
func NewReporter(cfg ReporterConfig) *Reporter {
	if cfg.Every <= 0 {
		cfg.Every = time.Hour
	}
	return &Reporter{
		cfg:    cfg,
		window: threshold{limit: cfg.Every.Seconds()},
	}
}

// Observe feeds one tick. The detector reports how many previously unseen
// visitors this tick introduced via domain.AuxNewVisitors.
func (r *Reporter) Observe(t domain.Tick) *domain.Event {
	now := t.At
	if r.epoch.IsZero() {
		r.align(now)
	}
	r.count += int(t.Aux[domain.AuxNewVisitors])

	if !r.window.observe(now.Sub(r.epoch).Seconds(), true) {
		return nil
	}
	ev := r.flush(now)
	r.align(now)
	return ev
}

// align anchors the running period to the last clock boundary before now
// and re-arms the window at that boundary.
func (r *Reporter) align(now time.Time) {
	r.epoch = now.Truncate(r.cfg.Every)
	r.window.reset()
	r.window.observe(0, true)
}

// ForceClose flushes a partial period at session end.
func (r *Reporter) ForceClose(now time.Time) *domain.Event {
	r.window.reset()
	return r.flush(now)
}

func (r *Reporter) flush(now time.Time) *domain.Event {
	count := r.count
	r.count = 0
	if count < 1 {
		return nil
	}
	return &domain.Event{
		Kind:    domain.KindPeopleCount,
		PointID: r.cfg.PointID,
		Start:   now,
		Measure: count,
	}
}
