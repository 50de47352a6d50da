// Package console implements the admin operations behind the CLI. Every
// operation checks the session's permissions before touching the API and
// publishes an audit event once it succeeds.
package console

import (
	"context"

	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/guard"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

type Session interface {
	Gate
	Admin() *models.Admin
	Require(perm models.Permission) error
	RequireMainAdmin() error
}

type Sweeper interface {
	RunOnce(ctx context.Context) (*models.SweepResult, error)
	SetActor(actor string)
}

type Console struct {
	session   Session
	jobs      api.JobsAPI
	admins    api.AdminAPI
	analytics api.AnalyticsAPI
	guard     *guard.Guard
	sweeper   Sweeper
	publisher events.Publisher
	logger    *zap.Logger

	workers   int
	exportDir string
}

func New(
	session Session,
	jobs api.JobsAPI,
	admins api.AdminAPI,
	analytics api.AnalyticsAPI,
	g *guard.Guard,
	sw Sweeper,
	publisher events.Publisher,
	logger *zap.Logger,
	cfg *config.Config,
) *Console {
	workers := cfg.BulkDeleteWorkers
	if workers < 1 {
		workers = 1
	}
	return &Console{
		session:   session,
		jobs:      jobs,
		admins:    admins,
		analytics: analytics,
		guard:     g,
		sweeper:   sw,
		publisher: publisher,
		logger:    logger,
		workers:   workers,
		exportDir: cfg.ExportDir,
	}
}

func (c *Console) actor() string {
	if a := c.session.Admin(); a != nil {
		if a.Username != "" {
			return a.Username
		}
		return a.Email
	}
	return "anonymous"
}

// audit publishes ev and only logs a failure; the mutation already happened.
func (c *Console) audit(ctx context.Context, action events.Action, target string, detail map[string]interface{}) {
	ev := events.NewAuditEvent(action, c.actor(), target, detail)
	if err := c.publisher.Publish(ctx, ev); err != nil {
		c.logger.Warn("failed to publish audit event",
			zap.String("action", string(action)),
			zap.String("target", target),
			zap.Error(err))
	}
}

func (c *Console) Jobs() api.JobsAPI {
	return c.jobs
}

func (c *Console) Gate() Gate {
	return c.session
}

func (c *Console) CreateJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := c.session.Require(models.PermCreateJobs); err != nil {
		return nil, err
	}
	created, err := c.guard.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	c.audit(ctx, events.ActionJobCreate, created.ID, map[string]interface{}{
		"role": created.Role, "companyName": created.CompanyName,
	})
	return created, nil
}

func (c *Console) BulkCreate(ctx context.Context, payload []byte) (*models.BulkResult, error) {
	if err := c.session.Require(models.PermCreateJobs); err != nil {
		return nil, err
	}
	entries, err := guard.ParseBulk(payload)
	if err != nil {
		return nil, err
	}
	res, err := c.guard.Bulk(ctx, entries)
	if err != nil {
		return nil, err
	}
	c.audit(ctx, events.ActionJobBulk, "", map[string]interface{}{
		"total":      res.Summary.Total,
		"created":    res.Summary.Created,
		"duplicates": res.Summary.Duplicates,
		"errors":     res.Summary.Errors,
	})
	return res, nil
}

// UpdateJob edits an active job. Jobs in dump or inactive must be restored
// first.
func (c *Console) UpdateJob(ctx context.Context, id string, job *models.Job) (*models.Job, error) {
	if err := c.session.Require(models.PermCreateJobs); err != nil {
		return nil, err
	}
	current, err := c.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != "" && current.Status != models.StatusActive {
		return nil, errors.InvalidInput("only active jobs can be edited", nil)
	}

	updated, err := c.guard.Update(ctx, id, job)
	if err != nil {
		return nil, err
	}
	c.audit(ctx, events.ActionJobUpdate, id, nil)
	return updated, nil
}

func (c *Console) SetStatus(ctx context.Context, id string, status models.JobStatus) error {
	if err := c.session.Require(models.PermCreateJobs); err != nil {
		return err
	}
	if err := c.jobs.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	c.audit(ctx, events.ActionJobStatus, id, map[string]interface{}{"status": string(status)})
	return nil
}

func (c *Console) DeleteJob(ctx context.Context, id string) error {
	if err := c.session.Require(models.PermDeleteJobs); err != nil {
		return err
	}
	if err := c.jobs.Delete(ctx, id); err != nil {
		return err
	}
	c.audit(ctx, events.ActionJobDelete, id, nil)
	return nil
}

func (c *Console) Sweep(ctx context.Context) (*models.SweepResult, error) {
	if err := c.session.Require(models.PermCreateJobs); err != nil {
		return nil, err
	}
	c.sweeper.SetActor(c.actor())
	return c.sweeper.RunOnce(ctx)
}
