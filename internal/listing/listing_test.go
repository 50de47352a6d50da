package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"jobboard/internal/api"
	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeJobs struct {
	mu      sync.Mutex
	queries []api.JobQuery
	admin   []api.AdminJobQuery
	dump    []api.PageQuery
	respond func(ctx context.Context, q api.JobQuery) (*models.JobPage, error)
}

func (f *fakeJobs) List(ctx context.Context, q api.JobQuery) (*models.JobPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	respond := f.respond
	f.mu.Unlock()
	if respond != nil {
		return respond(ctx, q)
	}
	return pageFor(q.Page, 3, q.Role), nil
}

func (f *fakeJobs) AdminList(_ context.Context, q api.AdminJobQuery) (*models.JobPage, error) {
	f.mu.Lock()
	f.admin = append(f.admin, q)
	f.mu.Unlock()
	p := pageFor(q.Page, 2, q.Status)
	p.StatusCounts = &models.StatusCounts{All: 15, Active: 10, Dump: 4, Inactive: 1}
	return p, nil
}

func (f *fakeJobs) DumpList(_ context.Context, q api.PageQuery) (*models.JobPage, error) {
	f.mu.Lock()
	f.dump = append(f.dump, q)
	f.mu.Unlock()
	return pageFor(q.Page, 1, "dump"), nil
}

func (f *fakeJobs) lastQuery() api.JobQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func pageFor(page, total int, tag string) *models.JobPage {
	return &models.JobPage{
		Jobs: []models.Job{{ID: tag}},
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  total,
			TotalJobs:   total * 12,
			HasPrev:     page > 1,
			HasNext:     page < total,
		},
	}
}

func TestParseFiltersSeedsFromURL(t *testing.T) {
	f, err := ParseFilters("keywords=react&location=remote")
	require.NoError(t, err)
	assert.Equal(t, Filters{Keywords: "react", Location: "remote"}, f)

	jobs := &fakeJobs{}
	l := NewListing(jobs, zaptest.NewLogger(t), f)
	assert.Equal(t, Filters{Keywords: "react", Location: "remote", Role: "", Experience: "", EmploymentType: ""}, l.Filters())
	assert.Empty(t, jobs.queries)
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	assert.Equal(t, "keywords=go+dev&role=SDE", Filters{Keywords: "go dev", Role: "SDE"}.Encode())
	assert.Equal(t, "", Filters{}.Encode())
}

func TestFilterChangeResetsPage(t *testing.T) {
	ctx := context.Background()
	jobs := &fakeJobs{}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{})

	_, err := l.SetPage(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, jobs.lastQuery().Page)

	for _, field := range Fields {
		_, err := l.SetPage(ctx, 2)
		require.NoError(t, err)

		_, err = l.SetFilter(ctx, field, "x")
		require.NoError(t, err)
		assert.Equal(t, 1, jobs.lastQuery().Page, field)
		assert.Equal(t, 1, l.Page())
	}
}

func TestEmptyFiltersNeverSent(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"jobs":[],"pagination":{"currentPage":1,"totalPages":1}}`))
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	jobs := api.NewJobsAPI(api.NewClient(logger, api.Options{BaseURL: srv.URL}))
	l := NewListing(jobs, logger, Filters{Keywords: "react", Location: ""})

	_, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "keywords=react&limit=12&page=1", rawQuery)
	assert.NotContains(t, rawQuery, "location=")
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	jobs := &fakeJobs{}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{Keywords: "a", Role: "b"})
	_, err := l.SetPage(ctx, 2)
	require.NoError(t, err)

	_, err = l.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, l.Filters().IsZero())
	assert.Equal(t, api.JobQuery{Page: 1, Limit: PublicPageSize}, jobs.lastQuery())
}

func TestResponseReplacesStateWholesale(t *testing.T) {
	ctx := context.Background()
	jobs := &fakeJobs{}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{})

	snap, err := l.Fetch(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Pagination.HasPrev)
	assert.True(t, snap.Pagination.HasNext)

	snap, err = l.SetPage(ctx, 3)
	require.NoError(t, err)
	assert.True(t, snap.Pagination.HasPrev)
	assert.False(t, snap.Pagination.HasNext)
	assert.Len(t, l.Snapshot().Jobs, 1)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	jobs := &fakeJobs{}
	jobs.respond = func(_ context.Context, q api.JobQuery) (*models.JobPage, error) {
		if q.Role == "slow" {
			close(started)
			<-release
		}
		return pageFor(q.Page, 1, q.Role), nil
	}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{})

	errs := make(chan error, 1)
	go func() {
		_, err := l.SetFilter(ctx, FieldRole, "slow")
		errs <- err
	}()
	<-started

	snap, err := l.SetFilter(ctx, FieldRole, "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", snap.Jobs[0].ID)

	close(release)
	assert.ErrorIs(t, <-errs, ErrStale)
	assert.Equal(t, "fast", l.Snapshot().Jobs[0].ID)
}

func TestNewFetchCancelsPrevious(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})

	jobs := &fakeJobs{}
	jobs.respond = func(ctx context.Context, q api.JobQuery) (*models.JobPage, error) {
		if q.Role == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return pageFor(q.Page, 1, q.Role), nil
	}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{})

	errs := make(chan error, 1)
	go func() {
		_, err := l.SetFilter(ctx, FieldRole, "slow")
		errs <- err
	}()
	<-started

	_, err := l.SetFilter(ctx, FieldRole, "fast")
	require.NoError(t, err)
	assert.ErrorIs(t, <-errs, ErrStale)
}

func TestUnknownFilterRejected(t *testing.T) {
	jobs := &fakeJobs{}
	l := NewListing(jobs, zaptest.NewLogger(t), Filters{})

	_, err := l.SetFilter(context.Background(), "salary", "high")
	require.Error(t, err)
	assert.Empty(t, jobs.queries)

	_, err = l.SetPage(context.Background(), 0)
	require.Error(t, err)
}

func TestAdminTableQuery(t *testing.T) {
	ctx := context.Background()
	jobs := &fakeJobs{}
	table := NewAdminTable(jobs, zaptest.NewLogger(t))

	snap, err := table.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.AdminJobQuery{Page: 1, Limit: 10, Status: "active", SortBy: "datePosted", SortOrder: "desc"}, jobs.admin[0])
	assert.Equal(t, 4, snap.StatusCounts.Dump)

	_, err = table.SetPage(ctx, 2)
	require.NoError(t, err)
	_, err = table.SetTab(ctx, TabDump)
	require.NoError(t, err)
	last := jobs.admin[len(jobs.admin)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "dump", last.Status)
	assert.Equal(t, "movedToDumpAt", last.SortBy)

	_, err = table.SetFilter(ctx, AdminFieldCompany, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", jobs.admin[len(jobs.admin)-1].Company)

	_, err = table.SetTab(ctx, "archived")
	require.Error(t, err)
	assert.Equal(t, TabDump, table.Tab())
}

func TestAdminTableAtFetchesOnce(t *testing.T) {
	jobs := &fakeJobs{}
	filters := AdminFilters{Search: "go", Location: "Pune"}
	table, err := NewAdminTableAt(jobs, zaptest.NewLogger(t), TabDump, filters, 3)
	require.NoError(t, err)
	assert.Empty(t, jobs.admin)

	_, err = table.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs.admin, 1)
	assert.Equal(t, api.AdminJobQuery{
		Page:      3,
		Limit:     10,
		Status:    "dump",
		Search:    "go",
		Location:  "Pune",
		SortBy:    "movedToDumpAt",
		SortOrder: "desc",
	}, jobs.admin[0])
}

func TestAdminTableAtRejectsBadState(t *testing.T) {
	tests := []struct {
		name string
		tab  Tab
		page int
	}{
		{"unknown tab", "archived", 1},
		{"page zero", TabActive, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			_, err := NewAdminTableAt(jobs, zaptest.NewLogger(t), tc.tab, AdminFilters{}, tc.page)
			require.Error(t, err)
			assert.Empty(t, jobs.admin)
		})
	}
}

func TestDumpQueuePageSize(t *testing.T) {
	jobs := &fakeJobs{}
	q := NewDumpQueue(jobs, zaptest.NewLogger(t))

	_, err := q.SetPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, api.PageQuery{Page: 2, Limit: 20}, jobs.dump[0])
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 1, nil},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{9, 10, []int{6, 7, 8, 9, 10}},
		{42, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tc := range cases {
		got := PageWindow(tc.current, tc.total, WindowSize)
		assert.Equal(t, tc.want, got, "current=%d total=%d", tc.current, tc.total)
		for _, p := range got {
			assert.True(t, p >= 1 && p <= tc.total)
		}
	}
}

func TestRange(t *testing.T) {
	from, to := Range(1, 12, 30)
	assert.Equal(t, []int{1, 12}, []int{from, to})
	from, to = Range(3, 12, 30)
	assert.Equal(t, []int{25, 30}, []int{from, to})
	from, to = Range(1, 12, 0)
	assert.Equal(t, []int{0, 0}, []int{from, to})
}

func TestControlsFollowPagination(t *testing.T) {
	c := NewControls(models.Pagination{CurrentPage: 1, TotalPages: 4, HasNext: true})
	assert.False(t, c.PrevEnabled)
	assert.True(t, c.NextEnabled)
	assert.Equal(t, []int{1, 2, 3, 4}, c.Pages)
}
