package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
)

const probeTimeout = 30 * time.Second

// Prober checks the point's devices and reports their current health. It
// fills the device fields only; identity and timestamps belong to the
// runner.
type Prober interface {
	Probe(ctx context.Context) (domain.EquipmentReport, error)
}

// EquipmentRunner periodically probes device health and upserts the point's
// status row. It runs around the clock rather than per work window, because
// dead hardware is most useful to notice before opening time. A failed
// upsert is just logged; the next probe supersedes it.
type EquipmentRunner struct {
	cfg     config.EquipmentConfig
	pointID int
	prober  Prober
	store   repository.EquipmentWriter
	log     *slog.Logger

	now func() time.Time
}

// NewEquipment builds the health checker.
func NewEquipment(cfg config.EquipmentConfig, pointID int, prober Prober, store repository.EquipmentWriter, log *slog.Logger) *EquipmentRunner {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Minute
	}
	if log != nil {
		log = log.With("component", "equipment")
	}
	return &EquipmentRunner{
		cfg:     cfg,
		pointID: pointID,
		prober:  prober,
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// Run checks immediately, then on every tick until the context is cancelled.
func (r *EquipmentRunner) Run(ctx context.Context) {
	if r == nil {
		return
	}
	if r.log != nil {
		r.log.Info("equipment checker started", "interval", r.cfg.CheckInterval)
	}

	ticker := time.NewTicker(r.cfg.CheckInterval)
	defer ticker.Stop()

	r.check(ctx)
	for {
		select {
		case <-ctx.Done():
			if r.log != nil {
				r.log.Info("equipment checker stopped")
			}
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

func (r *EquipmentRunner) check(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	report, err := r.prober.Probe(ctx)
	if err != nil {
		if r.log != nil {
			r.log.Warn("device probe failed", "error", err)
		}
		return
	}

	now := r.now()
	report.PointID = r.pointID
	report.Hour = now.Hour()
	report.CheckedAt = now

	if err := r.store.UpsertEquipmentReport(ctx, report); err != nil {
		if r.log != nil {
			r.log.Warn("equipment report upsert failed", "error", err)
		}
	}
}
