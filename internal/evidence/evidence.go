// Package evidence ships violation snapshots off the device. Delivery is
// fire and forget: a stuck or slow uploader never blocks the sampling loop
// and never affects event persistence.
package evidence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
)

const (
	defaultQueueDepth = 32
	uploadTimeout     = 30 * time.Second
)

// Capture is one piece of evidence tied to a violation event.
type Capture struct {
	ID      string
	Kind    domain.EventKind
	PointID int
	TakenAt time.Time
}

// Uploader delivers a capture to wherever evidence lives. Implementations
// own the transport; the dispatcher owns the queueing and the shrug when
// delivery fails.
type Uploader interface {
	Upload(ctx context.Context, c Capture) error
}

// UploaderFunc adapts a function to the Uploader interface.
type UploaderFunc func(ctx context.Context, c Capture) error

func (f UploaderFunc) Upload(ctx context.Context, c Capture) error { return f(ctx, c) }

// Dispatcher is the async evidence queue. Dispatch never blocks; a full
// queue drops the capture with a log line, because sampling cadence beats
// evidence completeness.
type Dispatcher struct {
	uploader Uploader
	log      *slog.Logger
	m        *metrics.Metrics

	queue chan Capture
	wg    sync.WaitGroup
}

// NewDispatcher builds a dispatcher with the given queue depth (zero means
// the default).
func NewDispatcher(uploader Uploader, log *slog.Logger, m *metrics.Metrics, depth int) *Dispatcher {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	if log != nil {
		log = log.With("component", "evidence")
	}
	return &Dispatcher{
		uploader: uploader,
		log:      log,
		m:        m,
		queue:    make(chan Capture, depth),
	}
}

// Run consumes the queue until the context is cancelled, then drains what is
// already queued before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil {
		return
	}
	d.wg.Add(1)
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			d.flush()
			return
		case c := <-d.queue:
			d.upload(ctx, c)
		}
	}
}

// Dispatch queues a capture, assigning it an id when the caller did not.
// It reports whether the capture was accepted.
func (d *Dispatcher) Dispatch(c Capture) bool {
	if d == nil {
		return false
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	select {
	case d.queue <- c:
		return true
	default:
		d.m.EvidenceDispatched("dropped")
		if d.log != nil {
			d.log.Warn("evidence queue full, capture dropped",
				"id", c.ID, "kind", c.Kind)
		}
		return false
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

func (d *Dispatcher) upload(ctx context.Context, c Capture) {
	upCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uploadTimeout)
	defer cancel()

	if err := d.uploader.Upload(upCtx, c); err != nil {
		d.m.EvidenceDispatched("failed")
		if d.log != nil {
			d.log.Warn("evidence upload failed", "id", c.ID, "kind", c.Kind, "error", err)
		}
		return
	}
	d.m.EvidenceDispatched("ok")
}

// flush gives already-queued captures one bounded delivery attempt during
// shutdown.
func (d *Dispatcher) flush() {
	for {
		select {
		case c := <-d.queue:
			d.upload(context.Background(), c)
		default:
			return
		}
	}
}
