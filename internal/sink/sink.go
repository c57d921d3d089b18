// Package sink persists events durably: remote first, offline buffer as
// fallback, with opportunistic drain of the buffer before every new write.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
)

const (
	defaultWriteTimeout = 5 * time.Second
	drainBatch          = 100
)

// Sink is the durable event sink shared by every agent on the point. After
// Persist returns nil the event lives in exactly one of the remote store or
// the local buffer; the only loss path is a local storage failure, which is
// reported as an error.
type Sink struct {
	remote repository.EventWriter
	queue  repository.LocalQueue
	log    *slog.Logger
	m      *metrics.Metrics

	writeTimeout time.Duration

	// mu serializes the queue's drain/insert sequence across concurrent
	// agent zones so a drain cannot interleave with a fresh insert.
	mu sync.Mutex
}

// New constructs a Sink.
func New(remote repository.EventWriter, queue repository.LocalQueue, log *slog.Logger, m *metrics.Metrics, writeTimeout time.Duration) *Sink {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if log != nil {
		log = log.With("component", "sink")
	}
	return &Sink{
		remote:       remote,
		queue:        queue,
		log:          log,
		m:            m,
		writeTimeout: writeTimeout,
	}
}

// Persist stores one event durably. The backlog is drained first; then the
// event is written remotely, falling back to the local buffer on any remote
// failure. An error return means even the local buffer refused the event,
// which is the single accepted data-loss case, already logged.
func (s *Sink) Persist(ctx context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drainLocked(ctx)

	if err := s.writeRemote(ctx, ev); err != nil {
		if s.log != nil {
			s.log.Warn("remote write failed, buffering locally",
				"kind", ev.Kind, "start", ev.Start, "error", err)
		}
		if qErr := s.queue.Append(ctx, ev); qErr != nil {
			s.m.EventPersisted("dropped")
			if s.log != nil {
				s.log.Error("local buffer write failed, event dropped",
					"kind", ev.Kind, "start", ev.Start, "error", qErr)
			}
			return fmt.Errorf("event lost: %w", qErr)
		}
		s.m.EventPersisted("buffered")
		s.updateDepth(ctx)
		return nil
	}
	s.m.EventPersisted("remote")
	return nil
}

// Drain opportunistically syncs the local backlog to the remote store. It
// stops at the first remote failure rather than hammering a dead link, and
// returns the number of rows synced.
func (s *Sink) Drain(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked(ctx)
}

func (s *Sink) drainLocked(ctx context.Context) int {
	backlog, err := s.queue.Oldest(ctx, drainBatch)
	if err != nil {
		if s.log != nil {
			s.log.Error("cannot scan offline buffer", "error", err)
		}
		return 0
	}
	if len(backlog) == 0 {
		return 0
	}

	synced := 0
	for _, rec := range backlog {
		if err := s.writeRemote(ctx, rec.Event); err != nil {
			// Remote still down; the rest of the backlog keeps its order
			// and waits for the next drain.
			if s.log != nil && !errors.Is(err, repository.ErrUnreachable) {
				s.log.Warn("drain write failed", "id", rec.ID, "error", err)
			}
			break
		}
		// Delete only after the remote commit: a crash in between leaves a
		// duplicate remote row, never a lost event.
		if err := s.queue.Delete(ctx, rec.ID); err != nil {
			if s.log != nil {
				s.log.Error("cannot delete synced buffer row", "id", rec.ID, "error", err)
			}
			break
		}
		synced++
	}
	if synced > 0 {
		s.m.BufferDrained(synced)
		if s.log != nil {
			s.log.Info("offline backlog synced", "count", synced, "pending", len(backlog)-synced)
		}
	}
	s.updateDepth(ctx)
	return synced
}

func (s *Sink) writeRemote(ctx context.Context, ev domain.Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return s.remote.WriteEvent(writeCtx, ev)
}

func (s *Sink) updateDepth(ctx context.Context) {
	if s.m == nil {
		return
	}
	if depth, err := s.queue.Depth(ctx); err == nil {
		s.m.BufferDepth(depth)
	}
}
