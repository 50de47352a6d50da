package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

// TopLimit is how many jobs and companies the overview ranks.
const TopLimit = 10

// Overview fetches the dashboard, top jobs, top companies and trends for the
// last days concurrently. The first failure is returned.
func (c *Console) Overview(ctx context.Context, days int) (*models.Overview, error) {
	if err := c.session.Require(models.PermViewAnalytics); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, errors.InvalidInput("days must be at least 1", nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ov := &models.Overview{Days: days}
	rng := models.AnalyticsRange{Days: days}
	top := models.AnalyticsRange{Days: days, Limit: TopLimit}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	tasks := []func() error{
		func() error {
			d, err := c.analytics.Dashboard(ctx, rng)
			if err == nil {
				ov.Dashboard = *d
			}
			return err
		},
		func() error {
			jobs, err := c.analytics.Jobs(ctx, top)
			ov.Jobs = jobs
			return err
		},
		func() error {
			companies, err := c.analytics.Companies(ctx, top)
			ov.Companies = companies
			return err
		},
		func() error {
			t, err := c.analytics.Trends(ctx, rng)
			if err == nil {
				ov.Trends = *t
			}
			return err
		},
	}

	for _, task := range tasks {
		wg.Add(1)
		go func(task func() error) {
			defer wg.Done()
			if err := task(); err != nil {
				fail(err)
			}
		}(task)
	}
	wg.Wait()

	if firstErr != nil {
		c.logger.Error("failed to fetch analytics", zap.Int("days", days), zap.Error(firstErr))
		return nil, firstErr
	}
	return ov, nil
}

func (c *Console) JobAnalytics(ctx context.Context, id string, days int) (*models.JobStat, error) {
	if err := c.session.Require(models.PermViewAnalytics); err != nil {
		return nil, err
	}
	return c.analytics.Job(ctx, id, models.AnalyticsRange{Days: days})
}

// ExportFileName is the name the export for days is saved under.
func ExportFileName(days int, format models.ExportFormat) string {
	return fmt.Sprintf("analytics-%ddays.%s", days, format)
}

// Export downloads the analytics export and writes it into the export
// directory. JSON documents are re-indented. It returns the written path.
func (c *Console) Export(ctx context.Context, days int, format models.ExportFormat) (string, error) {
	if err := c.session.Require(models.PermViewAnalytics); err != nil {
		return "", err
	}
	raw, err := c.analytics.Export(ctx, days, format)
	if err != nil {
		return "", err
	}

	if format == models.ExportJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return "", errors.Internal("export is not valid JSON", err)
		}
		buf.WriteByte('\n')
		raw = buf.Bytes()
	}

	if err := os.MkdirAll(c.exportDir, 0o755); err != nil {
		return "", errors.Internal("creating export directory", err)
	}
	path := filepath.Join(c.exportDir, ExportFileName(days, format))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", errors.Internal("writing export", err)
	}

	c.logger.Info("analytics exported", zap.String("path", path), zap.Int("bytes", len(raw)))
	c.audit(ctx, events.ActionExport, path, map[string]interface{}{"days": days, "format": string(format)})
	return path, nil
}

type Snapshotter interface {
	Store(ctx context.Context, ov *models.Overview) (string, error)
}

// ArchiveSnapshot takes an overview for days and stores it.
func (c *Console) ArchiveSnapshot(ctx context.Context, store Snapshotter, days int) (string, error) {
	ov, err := c.Overview(ctx, days)
	if err != nil {
		return "", err
	}
	id, err := store.Store(ctx, ov)
	if err != nil {
		return "", err
	}
	c.audit(ctx, events.ActionArchive, id, map[string]interface{}{"days": days})
	return id, nil
}
