package debounce

import (
	"testing"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

func zoneTick(offset time.Duration, client, cashier bool) domain.Tick {
	aux := map[string]float64{}
	if cashier {
		aux[domain.AuxCashierPresent] = 1
	}
	return domain.Tick{At: base.Add(offset), Signal: client, Aux: aux}
}

func newComposite() *Composite {
	return NewComposite(CompositeConfig{
		PointID:     3,
		Appearance:  5 * time.Second,
		Departure:   10 * time.Second,
		CashierWait: 60 * time.Second,
	})
}

// runVisit drives a full client visit: present over [0, stay], gone
// afterwards until the departure timer closes the visit, with a constant
// cashier signal throughout. It returns the event from the closing tick.
func runVisit(t *testing.T, c *Composite, stay time.Duration, cashier bool) *domain.Event {
	t.Helper()
	for off := time.Duration(0); off <= stay; off += time.Second {
		if ev := c.Observe(zoneTick(off, true, cashier)); ev != nil {
			t.Fatalf("unexpected event mid-visit at %s: %+v", off, ev)
		}
	}
	for off := stay + time.Second; ; off += time.Second {
		if ev := c.Observe(zoneTick(off, false, cashier)); ev != nil {
			return ev
		}
		if off > stay+11*time.Second {
			return nil
		}
	}
}

func TestCompositeNeglectedClientEmitsWait(t *testing.T) {
	c := newComposite()
	// Confirmed at 5s; stays until 120s; cashier away the whole time.
	ev := runVisit(t, c, 120*time.Second, false)
	if ev == nil {
		t.Fatalf("expected a client-wait event")
	}
	if ev.Kind != domain.KindClientWait || ev.PointID != 3 {
		t.Fatalf("unexpected event identity: %+v", ev)
	}
	if got, want := ev.Start, base.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("start = %s, want confirmation instant %s", got, want)
	}
	// Confirmed at 5s, closed at 131s: 126 seconds, floored to 2 minutes.
	if ev.Measure != 2 {
		t.Fatalf("measure = %d, want 2", ev.Measure)
	}
}

func TestCompositeServedClientEmitsNothing(t *testing.T) {
	c := newComposite()
	if ev := runVisit(t, c, 120*time.Second, true); ev != nil {
		t.Fatalf("cashier was present, expected no event, got %+v", ev)
	}
}

func TestCompositeShortVisitEmitsNothing(t *testing.T) {
	c := newComposite()
	// Confirmed at 5s, gone from 31s: visit shorter than the cashier wait.
	if ev := runVisit(t, c, 30*time.Second, false); ev != nil {
		t.Fatalf("visit shorter than the wait threshold must not emit, got %+v", ev)
	}
}

func TestCompositeUnconfirmedAppearanceCancels(t *testing.T) {
	c := newComposite()
	// Three seconds of presence, below the appearance timer.
	for off := time.Duration(0); off <= 3*time.Second; off += time.Second {
		c.Observe(zoneTick(off, true, false))
	}
	c.Observe(zoneTick(4*time.Second, false, false))
	// A later appearance must need the full timer again, no partial credit.
	for off := 5 * time.Second; off <= 10*time.Second; off += time.Second {
		c.Observe(zoneTick(off, true, false))
	}
	if c.confirmedAt == nil {
		t.Fatalf("expected confirmation at 10s after a fresh full appearance")
	}
	if got, want := *c.confirmedAt, base.Add(10*time.Second); !got.Equal(want) {
		// Appearance re-armed at 5s, confirmed once 5s elapsed.
		t.Fatalf("confirmed at %s, want %s", got, want)
	}
}

func TestCompositeDepartureBlipCancelsTimer(t *testing.T) {
	c := newComposite()
	for off := time.Duration(0); off <= 70*time.Second; off += time.Second {
		c.Observe(zoneTick(off, true, false))
	}
	// Gone briefly, back before the departure timer trips.
	for off := 71 * time.Second; off <= 75*time.Second; off += time.Second {
		if ev := c.Observe(zoneTick(off, false, false)); ev != nil {
			t.Fatalf("departure blip must not close the visit, got %+v", ev)
		}
	}
	c.Observe(zoneTick(76*time.Second, true, false))
	if c.confirmedAt == nil {
		t.Fatalf("visit must still be open after the blip")
	}
}

func TestCompositeForceCloseReappliesNeglectCheck(t *testing.T) {
	c := newComposite()
	for off := time.Duration(0); off <= 120*time.Second; off += time.Second {
		c.Observe(zoneTick(off, true, false))
	}
	ev := c.ForceClose(base.Add(125 * time.Second))
	if ev == nil {
		t.Fatalf("expected forced-close wait event")
	}
	if ev.End == nil || !ev.End.Equal(base.Add(125*time.Second)) {
		t.Fatalf("end = %v, want force-close instant", ev.End)
	}
	if ev.Measure != 2 {
		t.Fatalf("measure = %d, want 2", ev.Measure)
	}

	// Same visit but the cashier was seen on the last tick: no event.
	c = newComposite()
	for off := time.Duration(0); off <= 119*time.Second; off += time.Second {
		c.Observe(zoneTick(off, true, false))
	}
	c.Observe(zoneTick(120*time.Second, true, true))
	if ev := c.ForceClose(base.Add(125 * time.Second)); ev != nil {
		t.Fatalf("cashier present at close, expected no event, got %+v", ev)
	}
}
