package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"jobboard/internal/errors"
	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(zaptest.NewLogger(t), Options{BaseURL: srv.URL})
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	var auth atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"_id":"a1","username":"root","role":"main_admin"}`))
	})
	admins := NewAdminAPI(c)

	_, err := admins.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", auth.Load())

	c.SetToken("T")
	admin, err := admins.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T", auth.Load())
	assert.True(t, admin.IsMainAdmin())
}

func TestUnauthorizedDropsTokenAndRunsHooks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	})
	c.SetToken("T")

	var fired int32
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	_, err := NewJobsAPI(c).AdminList(context.Background(), AdminJobQuery{Page: 1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnauthorized))
	assert.Equal(t, "Token expired", errors.Message(err, "fallback"))
	assert.Equal(t, "", c.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestEmptyQueryFieldsAreOmitted(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		assert.Equal(t, "/jobs", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs":[],"pagination":{"currentPage":2,"totalPages":3,"totalJobs":30,"hasNext":true,"hasPrev":true}}`))
	})

	page, err := NewJobsAPI(c).List(context.Background(), JobQuery{Page: 2, Limit: 12, Role: "Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "limit=12&page=2&role=Engineer", rawQuery)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.True(t, page.Pagination.HasNext)
}

func TestCheckDuplicateSendsExclusion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://x/apply", body["hiringLink"])
		assert.Equal(t, "job-1", body["excludeJobId"])
		_, _ = w.Write([]byte(`{"isDuplicate":true,"existingJob":{"_id":"job-2","role":"SDE","companyName":"Acme"}}`))
	})

	check, err := NewJobsAPI(c).CheckDuplicate(context.Background(), "https://x/apply", "job-1")
	require.NoError(t, err)
	assert.True(t, check.IsDuplicate)
	require.NotNil(t, check.ExistingJob)
	assert.Equal(t, "job-2", check.ExistingJob.ID)
}

func TestConflictPayloadCarriesExistingJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Duplicate hiring link","existingJob":{"_id":"job-9","role":"SDE","companyName":"Acme"}}`))
	})

	_, err := NewJobsAPI(c).Create(context.Background(), &models.Job{Role: "SDE"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConflict))
	existing := ExistingJob(err)
	require.NotNil(t, existing)
	assert.Equal(t, "job-9", existing.ID)
}

func TestCreateAcceptsWrappedAndBareJob(t *testing.T) {
	var wrapped atomic.Bool
	wrapped.Store(true)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if wrapped.Load() {
			_, _ = w.Write([]byte(`{"message":"created","job":{"_id":"j1","role":"SDE"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"_id":"j2","role":"QA"}`))
	})
	jobs := NewJobsAPI(c)

	job, err := jobs.Create(context.Background(), &models.Job{})
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)

	wrapped.Store(false)
	job, err = jobs.Create(context.Background(), &models.Job{})
	require.NoError(t, err)
	assert.Equal(t, "j2", job.ID)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewClient(zaptest.NewLogger(t), Options{BaseURL: srv.URL})

	_, err := NewAdminAPI(c).Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnavailable))
	assert.Equal(t, "Login failed", errors.Message(err, "Login failed"))
}

func TestSweepDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/admin/process-status-changes", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"ok","result":{"movedToDump":3,"movedToInactive":1}}`))
	})

	res, err := NewJobsAPI(c).ProcessStatusChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SweepResult{MovedToDump: 3, MovedToInactive: 1}, *res)
}

func TestExportReturnsRawBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "days=30&format=csv", r.URL.RawQuery)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "date,visits\n2024-01-01,5\n")
	})

	raw, err := NewAnalyticsAPI(c).Export(context.Background(), 30, models.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "date,visits\n2024-01-01,5\n", string(raw))

	_, err = NewAnalyticsAPI(c).Export(context.Background(), 30, "xml")
	assert.True(t, errors.IsType(err, errors.ErrTypeInvalidInput))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	err := NewJobsAPI(c).UpdateStatus(context.Background(), "j1", "archived")
	assert.True(t, errors.IsType(err, errors.ErrTypeInvalidInput))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
