package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeJobs struct {
	mu       sync.Mutex
	queries  []api.JobQuery
	clicks   []string
	page     *models.JobPage
	jobs     map[string]models.Job
	listErr  error
	clickErr error
}

func (f *fakeJobs) List(_ context.Context, q api.JobQuery) (*models.JobPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeJobs) Get(_ context.Context, id string) (*models.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.NotFound("Job not found", nil)
	}
	return &job, nil
}

func (f *fakeJobs) TrackClick(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, id)
	return nil
}

func (f *fakeJobs) FilterOptions(context.Context) (*models.FilterOptions, error) {
	return &models.FilterOptions{Roles: []string{"Engineer"}, EmploymentTypes: models.EmploymentTypes}, nil
}

func newTestServer(t *testing.T, jobs *fakeJobs) *Server {
	return New(jobs, zaptest.NewLogger(t), config.Default())
}

func do(t *testing.T, s *Server, method, target string, out interface{}) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func jobsN(ids ...string) []models.Job {
	out := make([]models.Job, len(ids))
	for i, id := range ids {
		out[i] = models.Job{ID: id, Role: "Role " + id}
	}
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeJobs{})
	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListJobs(t *testing.T) {
	jobs := &fakeJobs{page: &models.JobPage{
		Jobs:       jobsN("a", "b"),
		Pagination: models.Pagination{CurrentPage: 2, TotalPages: 3, TotalJobs: 30, HasNext: true, HasPrev: true},
	}}
	s := newTestServer(t, jobs)

	var body listResponse
	code := do(t, s, http.MethodGet, "/api/jobs?role=Engineer&page=2&utm_source=x", &body)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, jobs.queries, 1)
	assert.Equal(t, api.JobQuery{Page: 2, Limit: 12, Role: "Engineer"}, jobs.queries[0])

	assert.Equal(t, "role=Engineer", body.Query)
	assert.Equal(t, "Engineer", body.Filters.Role)
	assert.Len(t, body.Jobs, 2)
	assert.Equal(t, []int{1, 2, 3}, body.Pages.Pages)
	assert.True(t, body.Pages.PrevEnabled)
	assert.Equal(t, showing{From: 13, To: 24, Total: 30}, body.Showing)
}

func TestListJobsRejectsBadPage(t *testing.T) {
	jobs := &fakeJobs{page: &models.JobPage{}}
	s := newTestServer(t, jobs)

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/jobs?page=abc", &body))
	assert.Equal(t, "page must be a number", body["error"])

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/jobs?page=0", nil))
	assert.Empty(t, jobs.queries)
}

func TestListJobsUpstreamDown(t *testing.T) {
	s := newTestServer(t, &fakeJobs{listErr: errors.Unavailable("request failed", context.DeadlineExceeded)})

	var body map[string]string
	assert.Equal(t, http.StatusBadGateway, do(t, s, http.MethodGet, "/api/jobs", &body))
	assert.Equal(t, "Job board is unavailable", body["error"])
}

func TestFilterOptions(t *testing.T) {
	s := newTestServer(t, &fakeJobs{})
	var body models.FilterOptions
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/jobs/filters", &body))
	assert.Equal(t, []string{"Engineer"}, body.Roles)
}

func TestJobDetail(t *testing.T) {
	jobs := &fakeJobs{
		jobs: map[string]models.Job{"b": {ID: "b", Role: "Backend", Description: "<p>Build <b>APIs</b></p>"}},
		page: &models.JobPage{Jobs: jobsN("a", "b", "c", "d")},
	}
	s := newTestServer(t, jobs)

	var body detailResponse
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/jobs/b", &body))

	assert.Equal(t, "Backend", body.Job.Role)
	assert.Equal(t, "Build APIs", body.Description)
	require.Len(t, body.Related, 3)
	for _, j := range body.Related {
		assert.NotEqual(t, "b", j.ID)
	}
	assert.Equal(t, 4, jobs.queries[0].Limit)
}

func TestJobDetailRelatedFailureIsSoft(t *testing.T) {
	jobs := &fakeJobs{
		jobs:    map[string]models.Job{"b": {ID: "b"}},
		listErr: errors.Internal("boom", nil),
	}
	s := newTestServer(t, jobs)

	var body detailResponse
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/jobs/b", &body))
	assert.Empty(t, body.Related)
}

func TestJobDetailNotFound(t *testing.T) {
	s := newTestServer(t, &fakeJobs{})
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/jobs/missing", &body))
	assert.Equal(t, "Job not found", body["error"])
}

func TestApplyTracksClick(t *testing.T) {
	jobs := &fakeJobs{jobs: map[string]models.Job{"b": {ID: "b", HiringLink: "https://acme.example/apply"}}}
	s := newTestServer(t, jobs)

	var body map[string]string
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/jobs/b/apply", &body))
	assert.Equal(t, "https://acme.example/apply", body["hiringLink"])
	assert.Equal(t, []string{"b"}, jobs.clicks)
}

func TestApplyClickFailure(t *testing.T) {
	jobs := &fakeJobs{
		jobs:     map[string]models.Job{"b": {ID: "b", HiringLink: "https://acme.example/apply"}},
		clickErr: errors.FromResponse(500, "", nil),
	}
	s := newTestServer(t, jobs)

	var body map[string]string
	assert.Equal(t, http.StatusInternalServerError, do(t, s, http.MethodPost, "/api/jobs/b/apply", &body))
	assert.NotContains(t, body, "hiringLink")
}
