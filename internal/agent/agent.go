// Package agent assembles each monitoring agent from its capture source,
// its debounce machines and the shared session life cycle.
package agent

import (
	"log/slog"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/evidence"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
)

// Deps bundles the collaborators shared by the agents on one point. Log is
// the logger for the specific agent being constructed; callers fill it per
// agent.
type Deps struct {
	PointID       int
	ScheduleRetry time.Duration

	Sink      session.Persister
	Schedules repository.ScheduleSource
	Evidence  *evidence.Dispatcher
	Log       *slog.Logger
	Metrics   *metrics.Metrics
}

func (d Deps) orchestrator(name string, interval time.Duration, src session.Source, machines []session.Debouncer) *session.Orchestrator {
	return session.New(session.Config{
		Agent:          name,
		PointID:        d.PointID,
		SampleInterval: interval,
		ScheduleRetry:  d.ScheduleRetry,
	}, src, machines, d.Sink, d.Schedules, d.Log, d.Metrics)
}
