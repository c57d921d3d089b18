package sink

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
)

type fakeRemote struct {
	down    bool
	written []domain.Event
	// failAfter, when >= 0, makes the remote fail once that many writes
	// have succeeded in the current call sequence.
	failAfter int
}

func (f *fakeRemote) WriteEvent(_ context.Context, ev domain.Event) error {
	if f.down {
		return fmt.Errorf("%w: dial tcp: connection refused", repository.ErrUnreachable)
	}
	if f.failAfter >= 0 && len(f.written) >= f.failAfter {
		return fmt.Errorf("%w: write timeout", repository.ErrUnreachable)
	}
	f.written = append(f.written, ev)
	return nil
}

type fakeQueue struct {
	rows   []domain.QueuedEvent
	nextID int64
	broken bool
}

func (f *fakeQueue) Append(_ context.Context, ev domain.Event) error {
	if f.broken {
		return errors.New("disk full")
	}
	f.nextID++
	f.rows = append(f.rows, domain.QueuedEvent{ID: f.nextID, Event: ev})
	return nil
}

func (f *fakeQueue) Oldest(_ context.Context, limit int) ([]domain.QueuedEvent, error) {
	if f.broken {
		return nil, errors.New("disk full")
	}
	if len(f.rows) < limit {
		limit = len(f.rows)
	}
	out := make([]domain.QueuedEvent, limit)
	copy(out, f.rows[:limit])
	return out, nil
}

func (f *fakeQueue) Delete(_ context.Context, id int64) error {
	for i, rec := range f.rows {
		if rec.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return errors.New("row not found")
}

func (f *fakeQueue) Depth(context.Context) (int, error) {
	return len(f.rows), nil
}

func event(minute int) domain.Event {
	return domain.Event{
		Kind:    domain.KindAbsence,
		PointID: 7,
		Start:   time.Date(2026, time.March, 10, 12, minute, 0, 0, time.UTC),
		Measure: minute + 1,
	}
}

func newTestSink(remote *fakeRemote, queue *fakeQueue) *Sink {
	return New(remote, queue, nil, nil, time.Second)
}

func TestPersistWritesRemoteWhenHealthy(t *testing.T) {
	remote := &fakeRemote{failAfter: -1}
	queue := &fakeQueue{}
	s := newTestSink(remote, queue)

	if err := s.Persist(context.Background(), event(0)); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if len(remote.written) != 1 || len(queue.rows) != 0 {
		t.Fatalf("event must live in exactly the remote store: remote=%d queue=%d",
			len(remote.written), len(queue.rows))
	}
}

func TestPersistBuffersDuringOutage(t *testing.T) {
	remote := &fakeRemote{down: true, failAfter: -1}
	queue := &fakeQueue{}
	s := newTestSink(remote, queue)

	for i := 0; i < 3; i++ {
		if err := s.Persist(context.Background(), event(i)); err != nil {
			t.Fatalf("persist %d: %v", i, err)
		}
	}
	if len(remote.written) != 0 || len(queue.rows) != 3 {
		t.Fatalf("events must live in exactly the buffer: remote=%d queue=%d",
			len(remote.written), len(queue.rows))
	}
}

func TestOutageRecoveryDeliversAllInOrder(t *testing.T) {
	remote := &fakeRemote{down: true, failAfter: -1}
	queue := &fakeQueue{}
	s := newTestSink(remote, queue)

	for i := 0; i < 3; i++ {
		if err := s.Persist(context.Background(), event(i)); err != nil {
			t.Fatalf("persist %d: %v", i, err)
		}
	}

	// Connectivity returns; the next persist drains the backlog first.
	remote.down = false
	if err := s.Persist(context.Background(), event(3)); err != nil {
		t.Fatalf("persist after recovery: %v", err)
	}

	if len(remote.written) != 4 {
		t.Fatalf("remote has %d events, want 4", len(remote.written))
	}
	for i, ev := range remote.written {
		if want := event(i); !ev.Start.Equal(want.Start) {
			t.Fatalf("remote order broken at %d: got start %s, want %s", i, ev.Start, want.Start)
		}
	}
	if len(queue.rows) != 0 {
		t.Fatalf("buffer should be empty after recovery, has %d rows", len(queue.rows))
	}
}

func TestDrainStopsAtFirstRemoteFailure(t *testing.T) {
	remote := &fakeRemote{down: true, failAfter: -1}
	queue := &fakeQueue{}
	s := newTestSink(remote, queue)

	for i := 0; i < 3; i++ {
		s.Persist(context.Background(), event(i))
	}

	// Remote accepts exactly one write, then fails again.
	remote.down = false
	remote.failAfter = 1
	synced := s.Drain(context.Background())
	if synced != 1 {
		t.Fatalf("synced = %d, want 1", synced)
	}
	if len(queue.rows) != 2 {
		t.Fatalf("buffer has %d rows, want 2 retained in order", len(queue.rows))
	}
	if !queue.rows[0].Start.Equal(event(1).Start) {
		t.Fatalf("head of retained backlog is %s, want second event", queue.rows[0].Start)
	}
}

func TestLocalStorageFailureIsReportedAndDropped(t *testing.T) {
	remote := &fakeRemote{down: true, failAfter: -1}
	queue := &fakeQueue{broken: true}
	s := newTestSink(remote, queue)

	err := s.Persist(context.Background(), event(0))
	if err == nil {
		t.Fatalf("expected an error when both stores fail")
	}
}

func TestDrainNoopOnEmptyBuffer(t *testing.T) {
	remote := &fakeRemote{failAfter: -1}
	queue := &fakeQueue{}
	s := newTestSink(remote, queue)
	if synced := s.Drain(context.Background()); synced != 0 {
		t.Fatalf("synced = %d on empty buffer", synced)
	}
}
