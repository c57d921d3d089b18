package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/agent"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/app/migrate"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/evidence"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/metrics"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/ops"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository/localq"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository/postgres"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/session"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/sink"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/source"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("pointwatch", slog.LevelInfo)
		if errors.Is(err, config.ErrPointIDMissing) {
			boot.Error("POINT_ID is not set; the agent has no identity without it")
		} else {
			boot.Error("configuration failed", "error", err)
		}
		os.Exit(1)
	}

	lvl := logger.ParseLevel(cfg.LogLevel)
	log := logger.New("pointwatch", lvl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Schema convergence is best effort at boot: the store may be offline
	// and the agents can run against the local buffer until it returns.
	if runner, err := migrate.New(cfg.DatabaseURL, cfg.MigrationsDir, log); err != nil {
		log.Warn("migrations not configured", "error", err)
	} else if err := runner.Up(ctx); err != nil {
		log.Warn("migrations failed, continuing with current schema", "error", err)
	}

	repo := postgres.New(pool)

	queue, err := localq.Open(ctx, cfg.BufferPath)
	if err != nil {
		log.Error("cannot open offline buffer", "path", cfg.BufferPath, "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	m := metrics.New()
	snk := sink.New(repo, queue, log, m, cfg.RemoteWriteTimeout)

	dispatcher := evidence.NewDispatcher(evidence.UploaderFunc(func(ctx context.Context, c evidence.Capture) error {
		return repo.RecordViolationCapture(ctx, c.ID, c.PointID, string(c.Kind), c.TakenAt)
	}), log, m, 0)
	go dispatcher.Run(ctx)

	opsSrv := ops.New(cfg.OpsAddr, m, log)
	go opsSrv.Run(ctx)

	deps := agent.Deps{
		PointID:       cfg.PointID,
		ScheduleRetry: cfg.ScheduleRetry,
		Sink:          snk,
		Schedules:     repo,
		Evidence:      dispatcher,
		Metrics:       m,
	}

	var wg sync.WaitGroup
	run := func(o *session.Orchestrator) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Run(ctx)
		}()
	}

	if cfg.Cashier.Enabled {
		d := deps
		d.Log = logger.New("cashier", lvl)
		run(agent.NewCashier(cfg.Cashier, source.NewFeed(cfg.Cashier.Feed), d))
	}
	if cfg.Client.Enabled {
		d := deps
		d.Log = logger.New("client", lvl)
		run(agent.NewClient(cfg.Client, source.NewFeed(cfg.Client.Feed), d))
	}
	if cfg.Chef.Enabled {
		d := deps
		d.Log = logger.New("chef", lvl)
		run(agent.NewChef(cfg.Chef, source.NewFeed(cfg.Chef.Feed), d))
	}
	if cfg.People.Enabled {
		d := deps
		d.Log = logger.New("people", lvl)
		run(agent.NewPeople(cfg.People, source.NewFeed(cfg.People.Feed), d))
	}
	if cfg.Scale.Enabled {
		d := deps
		d.Log = logger.New("scale", lvl)
		run(agent.NewScale(cfg.Scale, source.NewFeed(cfg.Scale.Feed), d))
	}
	if cfg.Equipment.Enabled {
		prober := source.NewProber(source.ProbeConfig{
			CashierFeed:   cfg.Cashier.Feed,
			ClientFeed:    cfg.Client.Feed,
			ChefFeed:      cfg.Chef.Feed,
			ScaleFeed:     cfg.Scale.Feed,
			ScaleLinkDev:  cfg.Equipment.ScaleLinkDev,
			MicrophoneDev: cfg.Equipment.MicrophoneDev,
			SpeakerDev:    cfg.Equipment.SpeakerDev,
			ThermalPath:   cfg.Equipment.ThermalPath,
		})
		checker := agent.NewEquipment(cfg.Equipment, cfg.PointID, prober, repo, logger.New("equipment", lvl))
		wg.Add(1)
		go func() {
			defer wg.Done()
			checker.Run(ctx)
		}()
	}

	log.Info("point agents running", "point_id", cfg.PointID)
	wg.Wait()

	// Give the evidence queue a moment to flush, then sync what we can.
	dispatcher.Wait()
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snk.Drain(flushCtx)
	log.Info("point agents stopped")
}
