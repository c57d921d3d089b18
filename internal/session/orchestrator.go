// Package session runs the outer life cycle shared by every monitoring
// agent: sync the offline backlog, fetch the point's work schedule, sleep
// through closed hours, and sample detections for the length of one work
// window.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/schedule"
)

const (
	defaultSampleInterval = time.Second
	defaultScheduleRetry  = 60 * time.Second
	fetchTimeout          = 10 * time.Second

	// closeGrace bounds the final persistence attempt when the process is
	// already shutting down and the parent context is gone.
	closeGrace = 10 * time.Second
)

// Source produces one detection sample per call. Open is called at the start
// of every work session and Close at its end, so implementations can hold a
// camera or sensor connection only while the point is actually working.
type Source interface {
	Open(ctx context.Context) error
	Read(ctx context.Context) (domain.Tick, error)
	Close() error
}

// Debouncer consumes ticks during a session and occasionally emits a
// finished event. ForceClose ends the session, flushing whatever span is
// still open.
type Debouncer interface {
	Observe(t domain.Tick) *domain.Event
	ForceClose(at time.Time) *domain.Event
}

// Persister is the durable event sink.
type Persister interface {
	Persist(ctx context.Context, ev domain.Event) error
	Drain(ctx context.Context) int
}

// Config carries the per-agent knobs of the session loop.
type Config struct {
	Agent   string
	PointID int

	// SampleInterval is the pause between detection samples inside a work
	// session.
	SampleInterval time.Duration

	// ScheduleRetry is the pause between attempts to fetch the point's
	// schedule when the remote store cannot be reached.
	ScheduleRetry time.Duration
}

// Orchestrator drives one agent. It never returns an error: every failure
// mode degrades to a logged retry, because an unattended shop device has
// nobody to read a crash.
type Orchestrator struct {
	cfg        Config
	source     Source
	debouncers []Debouncer
	sink       Persister
	schedules  repository.ScheduleSource
	log        *slog.Logger
	m          *metrics.Metrics

	now func() time.Time
}

// New constructs an orchestrator.
func New(cfg Config, source Source, debouncers []Debouncer, sink Persister, schedules repository.ScheduleSource, log *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = defaultSampleInterval
	}
	if cfg.ScheduleRetry <= 0 {
		cfg.ScheduleRetry = defaultScheduleRetry
	}
	if log != nil {
		log = log.With("component", "session")
	}
	return &Orchestrator{
		cfg:        cfg,
		source:     source,
		debouncers: debouncers,
		sink:       sink,
		schedules:  schedules,
		log:        log,
		m:          m,
		now:        time.Now,
	}
}

// Run executes the agent's life cycle until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	if o == nil {
		return
	}
	o.logInfo("agent started", "point_id", o.cfg.PointID)
	for {
		if ctx.Err() != nil {
			o.logInfo("agent stopped")
			return
		}

		o.sink.Drain(ctx)

		sched, ok := o.fetchSchedule(ctx)
		if !ok {
			o.logInfo("agent stopped")
			return
		}

		working, wait := schedule.Evaluate(o.now(), sched)
		if !working {
			o.logInfo("outside work window", "sleep", wait)
			if !sleep(ctx, wait) {
				o.logInfo("agent stopped")
				return
			}
			continue
		}
		o.runSession(ctx, wait)
	}
}

// fetchSchedule retries until the schedule arrives or the context ends. A
// missing row retries too: the point may simply not be provisioned yet.
func (o *Orchestrator) fetchSchedule(ctx context.Context) (domain.WorkSchedule, bool) {
	for {
		opCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		sched, err := o.schedules.TradingPointSchedule(opCtx, o.cfg.PointID)
		cancel()
		if err == nil {
			return sched, true
		}

		o.m.ScheduleRetry()
		if o.log != nil {
			o.log.Warn("schedule fetch failed", "point_id", o.cfg.PointID,
				"retry_in", o.cfg.ScheduleRetry, "error", err)
		}
		if !sleep(ctx, o.cfg.ScheduleRetry) {
			return domain.WorkSchedule{}, false
		}
	}
}

// runSession samples detections until the work window closes or the context
// is cancelled, then force-closes every debouncer so no confirmed span is
// lost to the night.
func (o *Orchestrator) runSession(ctx context.Context, window time.Duration) {
	o.m.SessionRun(o.cfg.Agent)
	windowEnd := o.now().Add(window)
	o.logInfo("work session started", "until", windowEnd)

	if err := o.source.Open(ctx); err != nil {
		if o.log != nil {
			o.log.Error("cannot open capture source", "error", err)
		}
		sleep(ctx, o.cfg.ScheduleRetry)
		return
	}
	defer func() {
		if err := o.source.Close(); err != nil && o.log != nil {
			o.log.Warn("capture source close failed", "error", err)
		}
	}()

	ticker := time.NewTicker(o.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.forceClose(ctx, o.now())
			return
		case <-ticker.C:
			now := o.now()
			if !now.Before(windowEnd) {
				o.forceClose(ctx, windowEnd)
				o.logInfo("work session ended")
				return
			}

			tick, err := o.source.Read(ctx)
			if err != nil {
				// A dropped frame is just a skipped sample; the machines
				// keep the state they had.
				if o.log != nil {
					o.log.Warn("sample read failed", "error", err)
				}
				continue
			}
			// Samples are timed by this loop's clock, never by a wire
			// timestamp: a detector's wall clock has no monotonic reading
			// and a step there would corrupt the interval math.
			tick.At = now
			o.observe(ctx, tick)
		}
	}
}

func (o *Orchestrator) observe(ctx context.Context, tick domain.Tick) {
	for _, d := range o.debouncers {
		if ev := d.Observe(tick); ev != nil {
			o.persist(ctx, *ev)
		}
	}
}

func (o *Orchestrator) forceClose(ctx context.Context, at time.Time) {
	// During shutdown the parent context is already cancelled; the closing
	// events still deserve a bounded persistence attempt.
	pCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		pCtx, cancel = context.WithTimeout(context.Background(), closeGrace)
		defer cancel()
	}
	for _, d := range o.debouncers {
		if ev := d.ForceClose(at); ev != nil {
			o.persist(pCtx, *ev)
		}
	}
}

func (o *Orchestrator) persist(ctx context.Context, ev domain.Event) {
	o.m.EventEmitted(string(ev.Kind))
	if err := o.sink.Persist(ctx, ev); err != nil && o.log != nil {
		o.log.Error("event lost", "kind", ev.Kind, "start", ev.Start, "error", err)
	}
}

func (o *Orchestrator) logInfo(msg string, args ...any) {
	if o.log != nil {
		o.log.Info(msg, args...)
	}
}

// sleep waits for d or for cancellation, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
