package agent

import (
	"context"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/debounce"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/evidence"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

// weighSource adapts a raw scale reading into the signals the machines
// consume: the primary signal is "something is on the plate" and the
// overload flag marks readings at or above the configured weight ceiling.
type weighSource struct {
	session.Source
	ceiling float64
}

func (s weighSource) Read(ctx context.Context) (domain.Tick, error) {
	t, err := s.Source.Read(ctx)
	if err != nil {
		return t, err
	}
	w := t.Aux[domain.AuxWeightGrams]
	t.Signal = w > 0
	if t.Aux == nil {
		t.Aux = make(map[string]float64, 1)
	}
	if w >= s.ceiling {
		t.Aux[domain.AuxScaleOverload] = 1
	} else {
		t.Aux[domain.AuxScaleOverload] = 0
	}
	return t, nil
}

// NewScale builds the scale agent: an inverted timeout machine that measures
// how long each weighing session kept weight on the plate, and a streak
// counter that snapshots sustained overload readings.
func NewScale(cfg config.ScaleConfig, src session.Source, deps Deps) *session.Orchestrator {
	weigh := weighSource{Source: src, ceiling: cfg.WeightThreshold}

	sessions := debounce.NewTracker(debounce.TrackerConfig{
		Kind:    domain.KindWorkSession,
		PointID: deps.PointID,
		Timeout: cfg.SessionTimeout,
		Invert:  true,
		Unit:    time.Second,
	})
	overload := debounce.NewStreak(debounce.StreakConfig{
		Kind:      domain.KindViolationPhoto,
		PointID:   deps.PointID,
		Threshold: cfg.OverloadStreak,
		AuxKey:    domain.AuxScaleOverload,
		OnFire: func(_ int, at time.Time) {
			deps.Evidence.Dispatch(evidence.Capture{
				Kind:    domain.KindViolationPhoto,
				PointID: deps.PointID,
				TakenAt: at,
			})
		},
	})
	return deps.orchestrator("scale", cfg.Interval, weigh, []session.Debouncer{sessions, overload})
}
