package api

import (
	"context"
	"net/http"

	"jobboard/internal/errors"
	"jobboard/internal/models"
)

type AnalyticsAPI interface {
	Dashboard(ctx context.Context, r models.AnalyticsRange) (*models.Dashboard, error)
	Jobs(ctx context.Context, r models.AnalyticsRange) ([]models.JobStat, error)
	Job(ctx context.Context, id string, r models.AnalyticsRange) (*models.JobStat, error)
	Companies(ctx context.Context, r models.AnalyticsRange) ([]models.CompanyStat, error)
	Trends(ctx context.Context, r models.AnalyticsRange) (*models.Trends, error)
	// Export returns the export document exactly as the server sent it.
	Export(ctx context.Context, days int, format models.ExportFormat) ([]byte, error)
}

type analyticsAPI struct {
	c *Client
}

func NewAnalyticsAPI(c *Client) AnalyticsAPI {
	return &analyticsAPI{c: c}
}

func (a *analyticsAPI) Dashboard(ctx context.Context, r models.AnalyticsRange) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := a.c.call(ctx, "analytics.Dashboard", http.MethodGet, "/analytics/dashboard", r, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (a *analyticsAPI) Jobs(ctx context.Context, r models.AnalyticsRange) ([]models.JobStat, error) {
	var stats []models.JobStat
	if err := a.c.call(ctx, "analytics.Jobs", http.MethodGet, "/analytics/jobs", r, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (a *analyticsAPI) Job(ctx context.Context, id string, r models.AnalyticsRange) (*models.JobStat, error) {
	var stat models.JobStat
	if err := a.c.call(ctx, "analytics.Job", http.MethodGet, idPath("/analytics/jobs/%s", id), r, nil, &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}

func (a *analyticsAPI) Companies(ctx context.Context, r models.AnalyticsRange) ([]models.CompanyStat, error) {
	var stats []models.CompanyStat
	if err := a.c.call(ctx, "analytics.Companies", http.MethodGet, "/analytics/companies", r, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (a *analyticsAPI) Trends(ctx context.Context, r models.AnalyticsRange) (*models.Trends, error) {
	var t models.Trends
	if err := a.c.call(ctx, "analytics.Trends", http.MethodGet, "/analytics/trends", r, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *analyticsAPI) Export(ctx context.Context, days int, format models.ExportFormat) ([]byte, error) {
	if format != models.ExportJSON && format != models.ExportCSV {
		return nil, errors.InvalidInput("unsupported export format: "+string(format), nil)
	}
	params := struct {
		Days   int    `url:"days,omitempty"`
		Format string `url:"format"`
	}{Days: days, Format: string(format)}
	return a.c.send(ctx, "analytics.Export", http.MethodGet, "/analytics/export", params, nil)
}
