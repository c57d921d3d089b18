package agent

import (
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/debounce"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

// NewClient builds the client wait agent: the two-stage presence machine
// that debounces a client's appearance and departure in the waiting zone and
// reports visits the cashier never showed up for.
func NewClient(cfg config.ClientConfig, src session.Source, deps Deps) *session.Orchestrator {
	composite := debounce.NewComposite(debounce.CompositeConfig{
		PointID:     deps.PointID,
		Appearance:  cfg.AppearanceTimer,
		Departure:   cfg.DepartureTimer,
		CashierWait: cfg.CashierWait,
	})
	return deps.orchestrator("client", cfg.Interval, src, []session.Debouncer{composite})
}
