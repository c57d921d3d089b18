package agent

import (
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/debounce"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/evidence"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

// NewChef builds the kitchen agent. It runs two machines over the same
// camera stream: an inverted timeout machine that measures confirmed work
// sessions at the table in seconds, and a streak counter that snapshots
// sustained PPE violations.
func NewChef(cfg config.ChefConfig, src session.Source, deps Deps) *session.Orchestrator {
	work := debounce.NewTracker(debounce.TrackerConfig{
		Kind:    domain.KindWorkSession,
		PointID: deps.PointID,
		Timeout: cfg.Timeout,
		Invert:  true,
		Unit:    time.Second,
	})
	ppe := debounce.NewStreak(debounce.StreakConfig{
		Kind:      domain.KindViolationPhoto,
		PointID:   deps.PointID,
		Threshold: cfg.ViolationStreak,
		AuxKey:    domain.AuxPPEViolation,
		OnFire: func(_ int, at time.Time) {
			deps.Evidence.Dispatch(evidence.Capture{
				Kind:    domain.KindViolationPhoto,
				PointID: deps.PointID,
				TakenAt: at,
			})
		},
	})
	return deps.orchestrator("chef", cfg.Interval, src, []session.Debouncer{work, ppe})
}
