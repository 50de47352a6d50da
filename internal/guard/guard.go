// Package guard validates job submissions and keeps two active jobs from
// sharing a hiring link.
package guard

import (
	"context"
	"fmt"
	"strings"

	"jobboard/internal/api"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

type JobWriter interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	Update(ctx context.Context, id string, job *models.Job) (*models.Job, error)
	CreateBulk(ctx context.Context, jobs []models.Job) (*models.BulkResult, error)
	CheckDuplicate(ctx context.Context, hiringLink, excludeJobID string) (*models.DuplicateCheck, error)
}

// RequiredFields lists, in form order, the required fields left blank in job.
func RequiredFields(job *models.Job) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"companyName", job.CompanyName},
		{"role", job.Role},
		{"location", job.Location},
		{"experience", job.Experience},
		{"description", job.Description},
		{"requiredDegree", job.RequiredDegree},
		{"hiringLink", job.HiringLink},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type ValidationError struct {
	Missing []string
	err     *errors.DomainError
}

func newValidationError(missing []string) *ValidationError {
	msg := "Please fill in: " + strings.Join(missing, ", ")
	return &ValidationError{Missing: missing, err: errors.InvalidInput(msg, nil)}
}

func (e *ValidationError) Error() string { return e.err.Message }
func (e *ValidationError) Unwrap() error { return e.err }

// ConflictError reports that the hiring link already belongs to Existing.
type ConflictError struct {
	Existing *models.JobSummary
	err      *errors.DomainError
}

func newConflictError(existing *models.JobSummary, cause error) *ConflictError {
	msg := "hiring link already in use"
	if existing != nil {
		msg = fmt.Sprintf("hiring link already used by %q at %s", existing.Role, existing.CompanyName)
	}
	return &ConflictError{Existing: existing, err: errors.Conflict(msg, cause)}
}

func (e *ConflictError) Error() string { return e.err.Message }
func (e *ConflictError) Unwrap() error { return e.err }

type Guard struct {
	jobs   JobWriter
	logger *zap.Logger
}

func New(jobs JobWriter, logger *zap.Logger) *Guard {
	return &Guard{jobs: jobs, logger: logger}
}

// Validate checks required fields and fills the employment type, keyword and
// skill defaults.
func Validate(job *models.Job) error {
	if missing := RequiredFields(job); len(missing) > 0 {
		return newValidationError(missing)
	}
	if job.EmploymentType == "" {
		job.EmploymentType = models.EmploymentFullTime
	}
	job.FillDefaults()
	return nil
}

// Create validates job, pre-flights its hiring link and creates it. A known
// duplicate yields *ConflictError and nothing is created.
func (g *Guard) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := Validate(job); err != nil {
		return nil, err
	}
	if err := g.preflight(ctx, job.HiringLink, ""); err != nil {
		return nil, err
	}

	created, err := g.jobs.Create(ctx, job)
	if err != nil {
		return nil, g.conflictOr(err)
	}
	g.logger.Info("job created", zap.String("job_id", created.ID), zap.String("role", created.Role))
	return created, nil
}

// Update is Create for an existing job; the job itself is excluded from the
// duplicate check.
func (g *Guard) Update(ctx context.Context, id string, job *models.Job) (*models.Job, error) {
	if id == "" {
		return nil, errors.InvalidInput("job id is required", nil)
	}
	if err := Validate(job); err != nil {
		return nil, err
	}
	if err := g.preflight(ctx, job.HiringLink, id); err != nil {
		return nil, err
	}

	updated, err := g.jobs.Update(ctx, id, job)
	if err != nil {
		return nil, g.conflictOr(err)
	}
	g.logger.Info("job updated", zap.String("job_id", id))
	return updated, nil
}

// preflight only fails on a reported duplicate. If the check itself fails the
// server still enforces uniqueness on submit.
func (g *Guard) preflight(ctx context.Context, link, excludeID string) error {
	check, err := g.jobs.CheckDuplicate(ctx, link, excludeID)
	if err != nil {
		g.logger.Warn("duplicate check failed, submitting anyway", zap.String("hiring_link", link), zap.Error(err))
		return nil
	}
	if check.IsDuplicate {
		g.logger.Info("duplicate hiring link", zap.String("hiring_link", link))
		return newConflictError(check.ExistingJob, nil)
	}
	return nil
}

func (g *Guard) conflictOr(err error) error {
	if existing := api.ExistingJob(err); existing != nil {
		return newConflictError(existing, err)
	}
	return err
}
