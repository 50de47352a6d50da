package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"jobboard/internal/errors"
	"jobboard/internal/models"
)

// JobQuery is the public listing query. Zero values are never sent.
type JobQuery struct {
	Page           int    `url:"page,omitempty"`
	Limit          int    `url:"limit,omitempty"`
	Keywords       string `url:"keywords,omitempty"`
	Location       string `url:"location,omitempty"`
	Role           string `url:"role,omitempty"`
	Experience     string `url:"experience,omitempty"`
	EmploymentType string `url:"employmentType,omitempty"`
	SortBy         string `url:"sortBy,omitempty"`
	SortOrder      string `url:"sortOrder,omitempty"`
}

// AdminJobQuery is the admin job table query.
type AdminJobQuery struct {
	Page      int    `url:"page,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Status    string `url:"status,omitempty"`
	Search    string `url:"search,omitempty"`
	Company   string `url:"company,omitempty"`
	Location  string `url:"location,omitempty"`
	SortBy    string `url:"sortBy,omitempty"`
	SortOrder string `url:"sortOrder,omitempty"`
}

type PageQuery struct {
	Page  int `url:"page,omitempty"`
	Limit int `url:"limit,omitempty"`
}

type JobsAPI interface {
	List(ctx context.Context, q JobQuery) (*models.JobPage, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	TrackClick(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)

	AdminList(ctx context.Context, q AdminJobQuery) (*models.JobPage, error)
	DumpList(ctx context.Context, q PageQuery) (*models.JobPage, error)
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	CreateBulk(ctx context.Context, jobs []models.Job) (*models.BulkResult, error)
	Update(ctx context.Context, id string, job *models.Job) (*models.Job, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
	Delete(ctx context.Context, id string) error
	ProcessStatusChanges(ctx context.Context) (*models.SweepResult, error)
	CheckDuplicate(ctx context.Context, hiringLink, excludeJobID string) (*models.DuplicateCheck, error)
}

type jobsAPI struct {
	c *Client
}

func NewJobsAPI(c *Client) JobsAPI {
	return &jobsAPI{c: c}
}

// jobEnvelope accepts both a bare job and a {"job": ...} wrapper.
type jobEnvelope struct {
	Wrapped *models.Job `json:"job"`
	models.Job
}

func (e *jobEnvelope) job() *models.Job {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	return &e.Job
}

func (a *jobsAPI) List(ctx context.Context, q JobQuery) (*models.JobPage, error) {
	var page models.JobPage
	if err := a.c.call(ctx, "jobs.List", http.MethodGet, "/jobs", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *jobsAPI) Get(ctx context.Context, id string) (*models.Job, error) {
	var env jobEnvelope
	if err := a.c.call(ctx, "jobs.Get", http.MethodGet, idPath("/jobs/%s", id), nil, nil, &env); err != nil {
		return nil, err
	}
	return env.job(), nil
}

func (a *jobsAPI) TrackClick(ctx context.Context, id string) error {
	return a.c.call(ctx, "jobs.TrackClick", http.MethodPost, idPath("/jobs/%s/click", id), nil, nil, nil)
}

func (a *jobsAPI) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var opts models.FilterOptions
	if err := a.c.call(ctx, "jobs.FilterOptions", http.MethodGet, "/jobs/filters/options", nil, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (a *jobsAPI) AdminList(ctx context.Context, q AdminJobQuery) (*models.JobPage, error) {
	var page models.JobPage
	if err := a.c.call(ctx, "jobs.AdminList", http.MethodGet, "/jobs/admin/all", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *jobsAPI) DumpList(ctx context.Context, q PageQuery) (*models.JobPage, error) {
	var page models.JobPage
	if err := a.c.call(ctx, "jobs.DumpList", http.MethodGet, "/jobs/admin/dump", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *jobsAPI) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	var env jobEnvelope
	if err := a.c.call(ctx, "jobs.Create", http.MethodPost, "/jobs", nil, job, &env); err != nil {
		return nil, err
	}
	return env.job(), nil
}

func (a *jobsAPI) CreateBulk(ctx context.Context, jobs []models.Job) (*models.BulkResult, error) {
	body := struct {
		Jobs []models.Job `json:"jobs"`
	}{Jobs: jobs}

	var result models.BulkResult
	if err := a.c.call(ctx, "jobs.CreateBulk", http.MethodPost, "/jobs/bulk", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *jobsAPI) Update(ctx context.Context, id string, job *models.Job) (*models.Job, error) {
	var env jobEnvelope
	if err := a.c.call(ctx, "jobs.Update", http.MethodPut, idPath("/jobs/%s", id), nil, job, &env); err != nil {
		return nil, err
	}
	return env.job(), nil
}

func (a *jobsAPI) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	if !status.Valid() {
		return errors.InvalidInput("unknown job status: "+string(status), nil)
	}
	body := map[string]models.JobStatus{"status": status}
	return a.c.call(ctx, "jobs.UpdateStatus", http.MethodPut, idPath("/jobs/%s/status", id), nil, body, nil)
}

func (a *jobsAPI) Delete(ctx context.Context, id string) error {
	return a.c.call(ctx, "jobs.Delete", http.MethodDelete, idPath("/jobs/%s", id), nil, nil, nil)
}

func (a *jobsAPI) ProcessStatusChanges(ctx context.Context) (*models.SweepResult, error) {
	var out struct {
		Result models.SweepResult `json:"result"`
	}
	if err := a.c.call(ctx, "jobs.ProcessStatusChanges", http.MethodPost, "/jobs/admin/process-status-changes", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (a *jobsAPI) CheckDuplicate(ctx context.Context, hiringLink, excludeJobID string) (*models.DuplicateCheck, error) {
	body := struct {
		HiringLink   string `json:"hiringLink"`
		ExcludeJobID string `json:"excludeJobId,omitempty"`
	}{HiringLink: hiringLink, ExcludeJobID: excludeJobID}

	var check models.DuplicateCheck
	if err := a.c.call(ctx, "jobs.CheckDuplicate", http.MethodPost, "/jobs/check-duplicate", nil, body, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// ExistingJob extracts the conflicting job carried by a 409 error payload.
func ExistingJob(err error) *models.JobSummary {
	var de *errors.DomainError
	if !stderrors.As(err, &de) || len(de.Payload) == 0 {
		return nil
	}
	var body struct {
		ExistingJob *models.JobSummary `json:"existingJob"`
	}
	if json.Unmarshal(de.Payload, &body) != nil {
		return nil
	}
	return body.ExistingJob
}
