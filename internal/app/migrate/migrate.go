// Package migrate applies the remote-store schema with goose. Agents run it
// on startup so a freshly imaged device converges without operator steps.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const commandTimeout = time.Minute

// Runner applies goose migrations from a directory against the remote store.
type Runner struct {
	dsn string
	dir string
	log *slog.Logger
}

// New validates the migration setup and returns a runner.
func New(dsn, dir string, log *slog.Logger) (Runner, error) {
	if dsn == "" {
		return Runner{}, errors.New("migrate: empty database dsn")
	}
	if dir == "" {
		return Runner{}, errors.New("migrate: empty migrations directory")
	}
	if _, err := os.Stat(dir); err != nil {
		return Runner{}, fmt.Errorf("migrate: locate migrations dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return Runner{dsn: dsn, dir: dir, log: log}, nil
}

// Up applies all pending migrations.
func (r Runner) Up(ctx context.Context) error {
	return r.withDB(ctx, func(runCtx context.Context, db *sql.DB) error {
		r.log.Info("applying migrations", "dir", r.dir)
		if err := goose.UpContext(runCtx, db, r.dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		r.log.Info("schema up to date")
		return nil
	})
}

// Status prints applied and pending migrations.
func (r Runner) Status(ctx context.Context) error {
	return r.withDB(ctx, func(_ context.Context, db *sql.DB) error {
		if err := goose.Status(db, r.dir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back to the target version, or one step when the target is
// zero.
func (r Runner) Down(ctx context.Context, target int64) error {
	return r.withDB(ctx, func(runCtx context.Context, db *sql.DB) error {
		if target > 0 {
			r.log.Info("rolling back migrations", "target", target)
			if err := goose.DownToContext(runCtx, db, r.dir, target); err != nil {
				return fmt.Errorf("rollback to %d: %w", target, err)
			}
			return nil
		}
		r.log.Info("rolling back latest migration")
		if err := goose.DownContext(runCtx, db, r.dir); err != nil {
			return fmt.Errorf("rollback latest: %w", err)
		}
		return nil
	})
}

func (r Runner) withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	db, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := db.PingContext(runCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return fn(runCtx, db)
}
