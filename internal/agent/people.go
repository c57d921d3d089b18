package agent

import (
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/debounce"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

// NewPeople builds the visitor counter agent: the detector reports how many
// previously unseen people each sample introduced and the reporter rolls
// those deltas up into one count event per reporting period.
func NewPeople(cfg config.PeopleConfig, src session.Source, deps Deps) *session.Orchestrator {
	reporter := debounce.NewReporter(debounce.ReporterConfig{
		PointID: deps.PointID,
		Every:   cfg.ReportEvery,
	})
	return deps.orchestrator("people", cfg.Interval, src, []session.Debouncer{reporter})
}
