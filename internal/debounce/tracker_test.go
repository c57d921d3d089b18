package debounce

import (
	"testing"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

var base = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func tick(offset time.Duration, signal bool) domain.Tick {
	return domain.Tick{At: base.Add(offset), Signal: signal}
}

// feed pushes a constant signal once per second over [from, to] inclusive
// and fails the test if any tick emits an event.
func feed(t *testing.T, tr *Tracker, signal bool, from, to time.Duration) {
	t.Helper()
	for off := from; off <= to; off += time.Second {
		if ev := tr.Observe(tick(off, signal)); ev != nil {
			t.Fatalf("unexpected event at offset %s: %+v", off, ev)
		}
	}
}

func newAbsenceTracker() *Tracker {
	return NewTracker(TrackerConfig{
		Kind:    domain.KindAbsence,
		PointID: 7,
		Timeout: 10 * time.Second,
	})
}

func TestTrackerShortGapNeverConfirms(t *testing.T) {
	tr := newAbsenceTracker()
	feed(t, tr, true, 0, 5*time.Second)
	// Gone for 9 seconds, one short of the timeout.
	feed(t, tr, false, 6*time.Second, 15*time.Second)
	if ev := tr.Observe(tick(16*time.Second, true)); ev != nil {
		t.Fatalf("sub-timeout gap must not produce an event, got %+v", ev)
	}
	if ev := tr.ForceClose(base.Add(17 * time.Second)); ev != nil {
		t.Fatalf("nothing confirmed, force close must emit nothing, got %+v", ev)
	}
}

func TestTrackerConfirmedAbsenceEmitsOnReturn(t *testing.T) {
	tr := newAbsenceTracker()
	feed(t, tr, true, 0, 2*time.Second)
	// Absent from t=3s; pending arms at 3s, confirms at 13s.
	feed(t, tr, false, 3*time.Second, 200*time.Second)
	ev := tr.Observe(tick(200*time.Second+time.Second, true))
	if ev == nil {
		t.Fatalf("expected a closing event on return")
	}
	if ev.Kind != domain.KindAbsence || ev.PointID != 7 {
		t.Fatalf("unexpected event identity: %+v", ev)
	}
	if got, want := ev.Start, base.Add(13*time.Second); !got.Equal(want) {
		t.Fatalf("start = %s, want confirmation instant %s", got, want)
	}
	if ev.End == nil || !ev.End.Equal(base.Add(201*time.Second)) {
		t.Fatalf("end = %v, want return instant", ev.End)
	}
	// 188 seconds confirmed, floored to minutes.
	if ev.Measure != 3 {
		t.Fatalf("measure = %d, want 3", ev.Measure)
	}
}

func TestTrackerSubMinuteAbsenceDropped(t *testing.T) {
	tr := newAbsenceTracker()
	feed(t, tr, false, 0, 69*time.Second) // confirmed at 10s, gone 59s more
	if ev := tr.Observe(tick(69*time.Second+500*time.Millisecond, true)); ev != nil {
		t.Fatalf("59.5s absence must be dropped, got measure %d", ev.Measure)
	}

	tr = newAbsenceTracker()
	feed(t, tr, false, 0, 70*time.Second) // confirmed at 10s, gone 60s more
	ev := tr.Observe(tick(70*time.Second, true))
	if ev == nil || ev.Measure != 1 {
		t.Fatalf("60s absence must yield measure 1, got %+v", ev)
	}
}

func TestTrackerReturnDuringPendingCancels(t *testing.T) {
	tr := newAbsenceTracker()
	feed(t, tr, false, 0, 5*time.Second)
	if ev := tr.Observe(tick(6*time.Second, true)); ev != nil {
		t.Fatalf("cancelling a pending timer must not emit, got %+v", ev)
	}
	// A fresh gap must need the full timeout again.
	feed(t, tr, false, 7*time.Second, 16*time.Second)
	feed(t, tr, false, 17*time.Second, 80*time.Second)
	ev := tr.Observe(tick(81*time.Second, true))
	if ev == nil {
		t.Fatalf("expected event after full fresh timeout")
	}
	if got, want := ev.Start, base.Add(17*time.Second); !got.Equal(want) {
		t.Fatalf("start = %s, want new confirmation instant %s", got, want)
	}
}

func TestTrackerForceCloseEmitsOpenSpan(t *testing.T) {
	tr := newAbsenceTracker()
	feed(t, tr, false, 0, 20*time.Second) // confirmed at 10s
	closeAt := base.Add(190 * time.Second)
	ev := tr.ForceClose(closeAt)
	if ev == nil {
		t.Fatalf("force close must synthesize the closing event")
	}
	if ev.End == nil || !ev.End.Equal(closeAt) {
		t.Fatalf("end = %v, want window-end timestamp %s", ev.End, closeAt)
	}
	if ev.Measure != 3 {
		t.Fatalf("measure = %d, want 3", ev.Measure)
	}
	// Machine is reset afterwards.
	if ev := tr.ForceClose(closeAt.Add(time.Minute)); ev != nil {
		t.Fatalf("second force close must emit nothing, got %+v", ev)
	}
}

func TestTrackerInvertedPolarityTracksPresence(t *testing.T) {
	tr := NewTracker(TrackerConfig{
		Kind:    domain.KindWorkSession,
		PointID: 7,
		Timeout: 5 * time.Second,
		Invert:  true,
		Unit:    time.Second,
	})
	feed(t, tr, false, 0, 2*time.Second)
	// Present from 3s, session confirmed at 8s, leaves at 53s.
	feed(t, tr, true, 3*time.Second, 52*time.Second)
	ev := tr.Observe(tick(53*time.Second, false))
	if ev == nil {
		t.Fatalf("expected work session on departure")
	}
	if ev.Kind != domain.KindWorkSession {
		t.Fatalf("kind = %s", ev.Kind)
	}
	if got, want := ev.Start, base.Add(8*time.Second); !got.Equal(want) {
		t.Fatalf("start = %s, want %s", got, want)
	}
	if ev.Measure != 45 {
		t.Fatalf("measure = %d seconds, want 45", ev.Measure)
	}
}
