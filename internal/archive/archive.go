// Package archive stores point-in-time analytics snapshots in ClickHouse so
// trends survive beyond the API's own retention.
package archive

import (
	"context"
	"fmt"
	"time"

	"jobboard/common/telemetry"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/archive")

// Conn is the part of clickhouse.Conn the archive writes through.
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

type Archive struct {
	conn   Conn
	logger *zap.Logger
	now    func() time.Time
}

func New(conn Conn, logger *zap.Logger) *Archive {
	return &Archive{conn: conn, logger: logger, now: time.Now}
}

// Store sends the job stats as one batch, then writes the snapshot row, and
// returns the snapshot id. A snapshot row exists only once its job stats are
// stored; on any failure the id is empty.
func (a *Archive) Store(ctx context.Context, ov *models.Overview) (string, error) {
	ctx, span := tracer.Start(ctx, "StoreSnapshot")
	defer span.End()

	id := uuid.New()
	takenAt := a.now().UTC().Truncate(time.Second)
	d := ov.Dashboard

	span.SetAttributes(
		telemetry.String("snapshot.id", id.String()),
		telemetry.Int("snapshot.days", ov.Days),
		telemetry.Int("snapshot.jobs", len(ov.Jobs)),
	)

	if err := a.storeJobStats(ctx, id, takenAt, ov.Jobs); err != nil {
		span.RecordError(err)
		a.logger.Error("failed to insert job stats", zap.Error(err))
		return "", errors.Unavailable("inserting job stats", err)
	}

	if err := a.conn.Exec(ctx, `
		INSERT INTO analytics_snapshots (
			snapshot_id, taken_at, days, total_visits, unique_visitors,
			job_views, job_clicks, conversion_rate, device_breakdown, browser_breakdown
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, takenAt, uint16(ov.Days),
		counter(d.TotalVisits), counter(d.TotalUniqueVisitors),
		counter(d.TotalJobViews), counter(d.TotalJobClicks),
		d.ConversionRate, breakdown(d.DeviceBreakdown), breakdown(d.BrowserBreakdown),
	); err != nil {
		span.RecordError(err)
		a.logger.Error("failed to insert analytics snapshot", zap.Error(err))
		return "", errors.Unavailable("inserting analytics snapshot", err)
	}

	a.logger.Info("archived analytics snapshot",
		zap.String("snapshot_id", id.String()),
		zap.Int("days", ov.Days),
		zap.Int("job_stats", len(ov.Jobs)))
	return id.String(), nil
}

func (a *Archive) storeJobStats(ctx context.Context, id uuid.UUID, takenAt time.Time, stats []models.JobStat) error {
	if len(stats) == 0 {
		return nil
	}
	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO analytics_job_stats (
			snapshot_id, taken_at, job_id, role, company_name, views, clicks, conversion_rate
		)`)
	if err != nil {
		return err
	}
	for _, js := range stats {
		if err := batch.Append(
			id, takenAt, js.JobID, js.Role, js.CompanyName,
			counter(js.Views), counter(js.Clicks), js.ConversionRate,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("job %s: %w", js.JobID, err)
		}
	}
	return batch.Send()
}

func counter(n int) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func breakdown(m map[string]int) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = counter(v)
	}
	return out
}
