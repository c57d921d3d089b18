package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/app/migrate"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/config"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	flag.Parse()

	log := logger.New("migrate", slog.LevelInfo)

	dsn := config.GetString("DATABASE_URL", "")
	if dsn == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	dir := config.GetString("DB_MIGRATIONS_DIR", "./db/migrations")

	runner, err := migrate.New(dsn, dir, log)
	if err != nil {
		log.Error("failed to configure migration runner", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "up":
		err = runner.Up(ctx)
	case "status":
		err = runner.Status(ctx)
	case "down":
		err = runner.Down(ctx, *target)
	default:
		log.Error("unsupported command", "command", *command)
		os.Exit(1)
	}
	if err != nil {
		log.Error("migration command failed", "command", *command, "error", err)
		os.Exit(1)
	}
	log.Info("migration command completed", "command", *command)
}
