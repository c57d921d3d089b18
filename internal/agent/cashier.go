package agent

import (
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/debounce"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

// NewCashier builds the cashier absence agent: one timeout machine that
// confirms gaps in the cashier's presence at the till and records how many
// whole minutes each confirmed gap lasted.
func NewCashier(cfg config.CashierConfig, src session.Source, deps Deps) *session.Orchestrator {
	tracker := debounce.NewTracker(debounce.TrackerConfig{
		Kind:    domain.KindAbsence,
		PointID: deps.PointID,
		Timeout: cfg.Timeout,
	})
	return deps.orchestrator("cashier", cfg.Interval, src, []session.Debouncer{tracker})
}
