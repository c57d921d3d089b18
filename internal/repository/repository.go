package repository

import (
	"context"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

// EventWriter persists events to the remote store. Writes are idempotent
// upserts keyed by (point_id, kind, start_ts); connectivity problems are
// reported as errors wrapping ErrUnreachable.
type EventWriter interface {
	WriteEvent(ctx context.Context, ev domain.Event) error
}

// ScheduleSource reads the daily work window of a trading point.
type ScheduleSource interface {
	TradingPointSchedule(ctx context.Context, pointID int) (domain.WorkSchedule, error)
}

// EquipmentWriter upserts the current device-health snapshot of a point.
type EquipmentWriter interface {
	UpsertEquipmentReport(ctx context.Context, report domain.EquipmentReport) error
}

// LocalQueue is the restart-durable offline buffer. Rows are appended when
// the remote store is unreachable and deleted only after the remote write
// for that row is confirmed committed.
type LocalQueue interface {
	Append(ctx context.Context, ev domain.Event) error
	Oldest(ctx context.Context, limit int) ([]domain.QueuedEvent, error)
	Delete(ctx context.Context, id int64) error
	Depth(ctx context.Context) (int, error)
}
