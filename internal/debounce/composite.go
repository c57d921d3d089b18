package debounce

import (
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// CompositeConfig parametrises the two-stage client presence machine.
type CompositeConfig struct {
	PointID int

	// Appearance is how long a client must be continuously seen before the
	// visit is confirmed.
	Appearance time.Duration

	// Departure is how long the client must be continuously gone before
	// the visit is closed.
	Departure time.Duration

	// CashierWait is the minimum confirmed visit length that counts as a
	// neglected client when the cashier is away at closing time.
	CashierWait time.Duration
}

// Composite tracks a client through appearance, confirmed presence and
// departure, and emits a client-wait event only when the visit outlasted
// CashierWait and the cashier was absent when the visit closed. Served
// clients produce no event at all.
//
// The cashier signal rides in the tick's aux payload under
// domain.AuxCashierPresent and is re-sampled at every tick; closing
// decisions use the freshest sample available.
type Composite struct {
	cfg         CompositeConfig
	appearance  threshold
	departure   threshold
	epoch       time.Time
	confirmedAt *time.Time
	cashierSeen bool
}

// NewComposite builds a fresh machine for one sampling session.
func NewComposite(cfg CompositeConfig) *Composite {
	return &Composite{
		cfg:        cfg,
		appearance: threshold{limit: cfg.Appearance.Seconds()},
		departure:  threshold{limit: cfg.Departure.Seconds()},
	}
}

// Observe feeds one tick into the machine. The primary signal is the client
// zone; the cashier zone arrives as aux payload.
func (c *Composite) Observe(t domain.Tick) *domain.Event {
	now := t.At
	if c.epoch.IsZero() {
		c.epoch = now
	}
	at := now.Sub(c.epoch).Seconds()
	c.cashierSeen = t.Flag(domain.AuxCashierPresent)

	if t.Signal {
		if c.confirmedAt == nil {
			if c.appearance.observe(at, true) {
				confirmed := now
				c.confirmedAt = &confirmed
			}
		}
		c.departure.reset()
		return nil
	}

	if c.confirmedAt == nil {
		// Not-yet-confirmed appearances cancel entirely.
		c.appearance.reset()
		return nil
	}
	if c.departure.observe(at, true) {
		return c.close(now)
	}
	return nil
}

// ForceClose closes an open visit at session end, applying the same
// neglect check with the last sampled cashier signal.
func (c *Composite) ForceClose(now time.Time) *domain.Event {
	if c.confirmedAt == nil {
		c.appearance.reset()
		return nil
	}
	return c.close(now)
}

func (c *Composite) close(now time.Time) *domain.Event {
	confirmedAt := *c.confirmedAt
	c.confirmedAt = nil
	c.appearance.reset()
	c.departure.reset()

	if now.Sub(confirmedAt) < c.cfg.CashierWait || c.cashierSeen {
		return nil // served in time
	}
	measure := domain.MeasureIn(time.Minute, confirmedAt, now)
	if measure < 1 {
		return nil
	}
	end := now
	return &domain.Event{
		Kind:    domain.KindClientWait,
		PointID: c.cfg.PointID,
		Start:   confirmedAt,
		End:     &end,
		Measure: measure,
	}
}
