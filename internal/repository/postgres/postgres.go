// Package postgres implements the remote-store ports on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/repository"
)

// Repository implements the remote persistence ports on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ repository.EventWriter     = (*Repository)(nil)
	_ repository.ScheduleSource  = (*Repository)(nil)
	_ repository.EquipmentWriter = (*Repository)(nil)
)

// Connect opens a pgx pool with a short connect timeout so a failed write
// attempt cannot stall a sampling loop for longer than a few seconds.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

// WriteEvent upserts an event by its natural key. Re-delivering a row that
// already made it remotely (crash between remote commit and local delete)
// is therefore harmless.
func (r *Repository) WriteEvent(ctx context.Context, ev domain.Event) error {
	const query = `INSERT INTO point_events (point_id, kind, start_ts, end_ts, measure, recorded_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (point_id, kind, start_ts)
		DO UPDATE SET end_ts = EXCLUDED.end_ts, measure = EXCLUDED.measure, recorded_at = EXCLUDED.recorded_at`
	_, err := r.pool.Exec(ctx, query, ev.PointID, string(ev.Kind), ev.Start.UTC(), nullableTime(ev.End), ev.Measure)
	return classify(err)
}

// TradingPointSchedule reads the daily work window of a point.
func (r *Repository) TradingPointSchedule(ctx context.Context, pointID int) (domain.WorkSchedule, error) {
	const query = `SELECT COALESCE(open_time, ''), COALESCE(close_time, ''), COALESCE(gmt_offset, 0)
		FROM trading_points WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, pointID)
	var sched domain.WorkSchedule
	if err := row.Scan(&sched.StartTime, &sched.EndTime, &sched.GMTOffset); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WorkSchedule{}, repository.ErrNotFound
		}
		return domain.WorkSchedule{}, classify(err)
	}
	return sched, nil
}

// UpsertEquipmentReport replaces the device-health row of a point.
func (r *Repository) UpsertEquipmentReport(ctx context.Context, report domain.EquipmentReport) error {
	const query = `INSERT INTO equipment_reports
		(point_id, client_camera, chef_camera, cashier_camera, scale_camera, scale_link, microphone, speaker, cpu_temp, hour, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (point_id) DO UPDATE SET
			client_camera = EXCLUDED.client_camera,
			chef_camera = EXCLUDED.chef_camera,
			cashier_camera = EXCLUDED.cashier_camera,
			scale_camera = EXCLUDED.scale_camera,
			scale_link = EXCLUDED.scale_link,
			microphone = EXCLUDED.microphone,
			speaker = EXCLUDED.speaker,
			cpu_temp = EXCLUDED.cpu_temp,
			hour = EXCLUDED.hour,
			checked_at = EXCLUDED.checked_at`
	_, err := r.pool.Exec(ctx, query,
		report.PointID, report.ClientCamera, report.ChefCamera, report.CashierCamera,
		report.ScaleCamera, report.ScaleLink, report.Microphone, report.Speaker,
		report.CPUTemp, report.Hour, report.CheckedAt.UTC())
	return classify(err)
}

// RecordViolationCapture stores the metadata row of one evidence capture.
// The image itself travels out of band; the row ties its id to the event
// stream.
func (r *Repository) RecordViolationCapture(ctx context.Context, captureID string, pointID int, kind string, takenAt time.Time) error {
	const query = `INSERT INTO violation_captures (id, point_id, kind, taken_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, captureID, pointID, kind, takenAt.UTC())
	return classify(err)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// classify separates connectivity failures (no server response: wrapped in
// ErrUnreachable, retryable) from errors the server itself produced.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", repository.ErrUnreachable, err)
	}
	// The driver failed without a server response; treat it as a link
	// problem rather than a data problem.
	return fmt.Errorf("%w: %v", repository.ErrUnreachable, err)
}
