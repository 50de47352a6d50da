package listing

import (
	"context"
	"sync"

	"jobboard/internal/api"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

// Tab selects the status scope of the admin job table.
type Tab string

const (
	TabAll      Tab = "all"
	TabActive   Tab = "active"
	TabDump     Tab = "dump"
	TabInactive Tab = "inactive"
)

var Tabs = []Tab{TabAll, TabActive, TabDump, TabInactive}

func (t Tab) Valid() bool {
	switch t {
	case TabAll, TabActive, TabDump, TabInactive:
		return true
	}
	return false
}

// SortField is movedToDumpAt on the dump tab and datePosted elsewhere.
func (t Tab) SortField() string {
	if t == TabDump {
		return "movedToDumpAt"
	}
	return "datePosted"
}

type AdminField string

const (
	AdminFieldSearch   AdminField = "search"
	AdminFieldCompany  AdminField = "company"
	AdminFieldLocation AdminField = "location"
)

type AdminFilters struct {
	Search   string
	Company  string
	Location string
}

func (f *AdminFilters) Set(field AdminField, value string) error {
	switch field {
	case AdminFieldSearch:
		f.Search = value
	case AdminFieldCompany:
		f.Company = value
	case AdminFieldLocation:
		f.Location = value
	default:
		return errors.InvalidInput("unknown admin filter: "+string(field), nil)
	}
	return nil
}

// AdminTable is the status-tabbed job table of the admin console. It is not
// synchronised with any URL.
type AdminTable struct {
	jobs   AdminLister
	logger *zap.Logger
	seq    Sequencer

	mu      sync.Mutex
	tab     Tab
	filters AdminFilters
	page    int
	snap    Snapshot
}

func NewAdminTable(jobs AdminLister, logger *zap.Logger) *AdminTable {
	return &AdminTable{jobs: jobs, logger: logger, tab: TabActive, page: 1}
}

// NewAdminTableAt starts the table on the given tab, filters and page without
// fetching; call Fetch to load it.
func NewAdminTableAt(jobs AdminLister, logger *zap.Logger, tab Tab, filters AdminFilters, page int) (*AdminTable, error) {
	if !tab.Valid() {
		return nil, errors.InvalidInput("unknown tab: "+string(tab), nil)
	}
	if err := validPage(page); err != nil {
		return nil, err
	}
	return &AdminTable{jobs: jobs, logger: logger, tab: tab, filters: filters, page: page}, nil
}

func (t *AdminTable) Tab() Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tab
}

func (t *AdminTable) Page() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

func (t *AdminTable) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *AdminTable) Query() api.AdminJobQuery {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queryLocked()
}

func (t *AdminTable) queryLocked() api.AdminJobQuery {
	return api.AdminJobQuery{
		Page:      t.page,
		Limit:     AdminPageSize,
		Status:    string(t.tab),
		Search:    t.filters.Search,
		Company:   t.filters.Company,
		Location:  t.filters.Location,
		SortBy:    t.tab.SortField(),
		SortOrder: "desc",
	}
}

func (t *AdminTable) Fetch(ctx context.Context) (Snapshot, error) {
	return t.mutate(ctx, func() error { return nil })
}

func (t *AdminTable) SetTab(ctx context.Context, tab Tab) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if !tab.Valid() {
			return errors.InvalidInput("unknown tab: "+string(tab), nil)
		}
		t.tab = tab
		t.page = 1
		return nil
	})
}

func (t *AdminTable) SetFilter(ctx context.Context, field AdminField, value string) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if err := t.filters.Set(field, value); err != nil {
			return err
		}
		t.page = 1
		return nil
	})
}

func (t *AdminTable) SetPage(ctx context.Context, n int) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if err := validPage(n); err != nil {
			return err
		}
		t.page = n
		return nil
	})
}

func (t *AdminTable) Clear(ctx context.Context) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		t.filters = AdminFilters{}
		t.page = 1
		return nil
	})
}

func (t *AdminTable) mutate(ctx context.Context, fn func() error) (Snapshot, error) {
	return refresh(ctx, &t.mu, &t.seq, t.logger,
		func() (api.AdminJobQuery, error) {
			if err := fn(); err != nil {
				return api.AdminJobQuery{}, err
			}
			return t.queryLocked(), nil
		},
		t.jobs.AdminList,
		func(p *models.JobPage) Snapshot {
			t.snap = snapshotOf(p)
			return t.snap
		})
}

// DumpQueue pages through jobs awaiting deactivation.
type DumpQueue struct {
	jobs   AdminLister
	logger *zap.Logger
	seq    Sequencer

	mu   sync.Mutex
	page int
	snap Snapshot
}

func NewDumpQueue(jobs AdminLister, logger *zap.Logger) *DumpQueue {
	return &DumpQueue{jobs: jobs, logger: logger, page: 1}
}

func (d *DumpQueue) Page() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

func (d *DumpQueue) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap
}

func (d *DumpQueue) Fetch(ctx context.Context) (Snapshot, error) {
	return d.mutate(ctx, func() error { return nil })
}

func (d *DumpQueue) SetPage(ctx context.Context, n int) (Snapshot, error) {
	return d.mutate(ctx, func() error {
		if err := validPage(n); err != nil {
			return err
		}
		d.page = n
		return nil
	})
}

func (d *DumpQueue) mutate(ctx context.Context, fn func() error) (Snapshot, error) {
	return refresh(ctx, &d.mu, &d.seq, d.logger,
		func() (api.PageQuery, error) {
			if err := fn(); err != nil {
				return api.PageQuery{}, err
			}
			return api.PageQuery{Page: d.page, Limit: DumpPageSize}, nil
		},
		d.jobs.DumpList,
		func(p *models.JobPage) Snapshot {
			d.snap = snapshotOf(p)
			return d.snap
		})
}
