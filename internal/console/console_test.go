package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/guard"
	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSession struct {
	admin *models.Admin
}

func (s *fakeSession) IsAuthenticated() bool { return s.admin != nil }
func (s *fakeSession) IsMainAdmin() bool     { return s.admin.IsMainAdmin() }
func (s *fakeSession) Admin() *models.Admin  { return s.admin }

func (s *fakeSession) HasPermission(p models.Permission) bool {
	if s.admin == nil {
		return false
	}
	if s.admin.IsMainAdmin() {
		return true
	}
	return s.admin.Permissions.Has(p)
}

func (s *fakeSession) Require(p models.Permission) error {
	if !s.HasPermission(p) {
		return errors.Forbidden("missing "+string(p), nil)
	}
	return nil
}

func (s *fakeSession) RequireMainAdmin() error {
	if !s.IsMainAdmin() {
		return errors.Forbidden("main admin only", nil)
	}
	return nil
}

type fakeSweeper struct{ actor string }

func (f *fakeSweeper) RunOnce(context.Context) (*models.SweepResult, error) {
	return &models.SweepResult{MovedToDump: 1}, nil
}
func (f *fakeSweeper) SetActor(a string) { f.actor = a }

type recorder struct {
	mu     sync.Mutex
	events []events.AuditEvent
}

func (r *recorder) Publish(_ context.Context, ev events.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}
func (r *recorder) Close() {}

func (r *recorder) actions() []events.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Action
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

type harness struct {
	console *Console
	audit   *recorder
	calls   *int32
	sweeper *fakeSweeper
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newHarness(t *testing.T, admin *models.Admin, mux *http.ServeMux) harness {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	client := api.NewClient(logger, api.Options{BaseURL: srv.URL})
	jobs := api.NewJobsAPI(client)
	cfg := config.Default()
	cfg.BulkDeleteWorkers = 3
	cfg.ExportDir = t.TempDir()

	rec := &recorder{}
	sw := &fakeSweeper{}
	c := New(&fakeSession{admin: admin}, jobs, api.NewAdminAPI(client), api.NewAnalyticsAPI(client),
		guard.New(jobs, logger), sw, rec, logger, cfg)
	return harness{console: c, audit: rec, calls: &calls, sweeper: sw}
}

func mainAdmin() *models.Admin {
	return &models.Admin{ID: "root", Username: "root", Role: models.RoleMainAdmin}
}

func plainAdmin(p models.Permissions) *models.Admin {
	return &models.Admin{ID: "a2", Username: "ana", Role: models.RoleAdmin, Permissions: p}
}

func TestAddJobHiddenWithoutCreatePermission(t *testing.T) {
	s := &fakeSession{admin: plainAdmin(models.Permissions{CanDeleteJobs: true})}
	require.True(t, s.IsAuthenticated())

	toolbar := ToolbarActions(s)
	assert.False(t, HasAction(toolbar, ActionAddJob))
	assert.True(t, HasAction(toolbar, ActionBulkDelete))

	s.admin.Permissions.CanCreateJobs = true
	assert.True(t, HasAction(ToolbarActions(s), ActionAddJob))
}

func TestRowActionsFollowStatusAndPermissions(t *testing.T) {
	s := &fakeSession{admin: plainAdmin(models.DefaultPermissions())}

	active := Actions(s, &models.Job{Status: models.StatusActive})
	assert.Equal(t, []Action{ActionView, ActionEdit, ActionDelete}, active)

	dump := Actions(s, &models.Job{Status: models.StatusDump})
	assert.Equal(t, []Action{ActionView, ActionRestore, ActionDeactivate, ActionDelete}, dump)

	anonymous := Actions(&fakeSession{}, &models.Job{Status: models.StatusActive})
	assert.Equal(t, []Action{ActionView}, anonymous)
}

func TestNavigationHidesAdminsForPlainAdmin(t *testing.T) {
	items := Navigation(&fakeSession{admin: plainAdmin(models.DefaultPermissions())})
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Dashboard", "Manage Jobs", "Dump Jobs", "Analytics"}, names)
	assert.Len(t, Navigation(&fakeSession{admin: mainAdmin()}), 5)
	assert.Empty(t, Navigation(&fakeSession{}))
}

func TestPermissionDeniedBeforeAnyCall(t *testing.T) {
	h := newHarness(t, plainAdmin(models.Permissions{}), http.NewServeMux())
	ctx := context.Background()

	_, err := h.console.CreateJob(ctx, &models.Job{})
	assert.True(t, errors.IsType(err, errors.ErrTypeForbidden))
	assert.True(t, errors.IsType(h.console.DeleteJob(ctx, "j1"), errors.ErrTypeForbidden))
	_, err = h.console.Overview(ctx, 7)
	assert.True(t, errors.IsType(err, errors.ErrTypeForbidden))
	_, err = h.console.Admins(ctx)
	assert.True(t, errors.IsType(err, errors.ErrTypeForbidden))
	_, err = h.console.Sweep(ctx)
	assert.True(t, errors.IsType(err, errors.ErrTypeForbidden))

	assert.Equal(t, int32(0), atomic.LoadInt32(h.calls))
	assert.Empty(t, h.audit.actions())
}

func TestBulkDeleteReportsEachID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Job not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	h := newHarness(t, plainAdmin(models.DefaultPermissions()), mux)

	res, err := h.console.BulkDelete(context.Background(), []string{"j1", "missing", "j3", "j4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j3", "j4"}, res.Deleted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "missing", res.Failed[0].ID)
	assert.True(t, errors.IsType(res.Failed[0].Err, errors.ErrTypeNotFound))
	assert.Len(t, h.audit.actions(), 3)
}

func TestMainAdminTargetsAreProtected(t *testing.T) {
	var mutations int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"admins": []models.Admin{
			*mainAdmin(),
			*plainAdmin(models.DefaultPermissions()),
		}})
	})
	mux.HandleFunc("/admin/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mutations, 1)
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	h := newHarness(t, mainAdmin(), mux)
	ctx := context.Background()

	assert.True(t, errors.IsType(h.console.DeleteAdmin(ctx, "root"), errors.ErrTypeForbidden))
	assert.True(t, errors.IsType(h.console.SetAdminActive(ctx, "root", false), errors.ErrTypeForbidden))
	assert.True(t, errors.IsType(h.console.UpdateAdminPermissions(ctx, "root", models.Permissions{}), errors.ErrTypeForbidden))
	assert.Equal(t, int32(0), atomic.LoadInt32(&mutations))

	require.NoError(t, h.console.SetAdminActive(ctx, "a2", false))
	assert.True(t, errors.IsType(h.console.DeleteAdmin(ctx, "ghost"), errors.ErrTypeNotFound))
	assert.Equal(t, []events.Action{events.ActionAdminStatus}, h.audit.actions())
}

func TestCreateAdminValidates(t *testing.T) {
	h := newHarness(t, mainAdmin(), http.NewServeMux())

	_, err := h.console.CreateAdmin(context.Background(), models.NewAdmin{Username: "bob"})
	require.Error(t, err)
	assert.Equal(t, "Please fill in: email, password", errors.Message(err, ""))

	_, err = h.console.CreateAdmin(context.Background(), models.NewAdmin{Username: "bob", Email: "nope", Password: "pw"})
	assert.True(t, errors.IsType(err, errors.ErrTypeInvalidInput))
	assert.Equal(t, int32(0), atomic.LoadInt32(h.calls))
}

func TestUpdateJobRequiresActiveJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Job{ID: r.PathValue("id"), Status: models.StatusDump})
	})
	h := newHarness(t, plainAdmin(models.DefaultPermissions()), mux)

	_, err := h.console.UpdateJob(context.Background(), "j1", &models.Job{})
	require.Error(t, err)
	assert.Equal(t, "only active jobs can be edited", errors.Message(err, ""))
}

func TestOverviewFetchesAllViews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analytics/dashboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "days=30", r.URL.RawQuery)
		writeJSON(w, http.StatusOK, models.Dashboard{TotalVisits: 100})
	})
	mux.HandleFunc("GET /analytics/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "days=30&limit=10", r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []models.JobStat{{JobID: "j1"}})
	})
	mux.HandleFunc("GET /analytics/companies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.CompanyStat{{Company: "Acme"}})
	})
	mux.HandleFunc("GET /analytics/trends", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Trends{Trends: []models.TrendPoint{{Date: "2024-01-01"}}})
	})
	h := newHarness(t, plainAdmin(models.DefaultPermissions()), mux)

	ov, err := h.console.Overview(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 100, ov.Dashboard.TotalVisits)
	assert.Len(t, ov.Jobs, 1)
	assert.Len(t, ov.Companies, 1)
	assert.Len(t, ov.Trends.Trends, 1)
}

func TestOverviewReturnsFirstFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
	})
	h := newHarness(t, mainAdmin(), mux)

	_, err := h.console.Overview(context.Background(), 7)
	require.Error(t, err)
}

func TestExportWritesIndentedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analytics/export", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"visits":[1,2]}`))
	})
	h := newHarness(t, mainAdmin(), mux)

	path, err := h.console.Export(context.Background(), 7, models.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, "analytics-7days.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"visits\": [\n    1,\n    2\n  ]\n}\n", string(data))
	assert.Equal(t, []events.Action{events.ActionExport}, h.audit.actions())
}

type fakeStore struct{ got *models.Overview }

func (f *fakeStore) Store(_ context.Context, ov *models.Overview) (string, error) {
	f.got = ov
	return "snap-1", nil
}

func TestArchiveSnapshotStoresOverview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analytics/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Dashboard{TotalVisits: 5})
	})
	mux.HandleFunc("GET /analytics/jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.JobStat{})
	})
	mux.HandleFunc("GET /analytics/companies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.CompanyStat{})
	})
	mux.HandleFunc("GET /analytics/trends", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Trends{})
	})
	h := newHarness(t, mainAdmin(), mux)
	store := &fakeStore{}

	id, err := h.console.ArchiveSnapshot(context.Background(), store, 14)
	require.NoError(t, err)
	assert.Equal(t, "snap-1", id)
	assert.Equal(t, 14, store.got.Days)
	assert.Equal(t, 5, store.got.Dashboard.TotalVisits)
}

func TestSweepAttributesActor(t *testing.T) {
	h := newHarness(t, plainAdmin(models.DefaultPermissions()), http.NewServeMux())

	res, err := h.console.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.MovedToDump)
	assert.Equal(t, "ana", h.sweeper.actor)
}
