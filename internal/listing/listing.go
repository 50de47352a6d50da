// Package listing keeps filter and pagination state for job lists and drives
// the fetches behind them. Every mutation resets or moves the page, issues a
// new fetch and drops any response that a newer fetch has superseded.
package listing

import (
	"context"
	"sync"

	"jobboard/internal/api"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

const (
	PublicPageSize = 12
	AdminPageSize  = 10
	DumpPageSize   = 20
)

type JobLister interface {
	List(ctx context.Context, q api.JobQuery) (*models.JobPage, error)
}

type AdminLister interface {
	AdminList(ctx context.Context, q api.AdminJobQuery) (*models.JobPage, error)
	DumpList(ctx context.Context, q api.PageQuery) (*models.JobPage, error)
}

// Snapshot is the last applied response. It is replaced wholesale on every
// successful fetch.
type Snapshot struct {
	Jobs         []models.Job        `json:"jobs"`
	Pagination   models.Pagination   `json:"pagination"`
	StatusCounts models.StatusCounts `json:"statusCounts"`
}

func snapshotOf(p *models.JobPage) Snapshot {
	s := Snapshot{Jobs: p.Jobs, Pagination: p.Pagination}
	if s.Jobs == nil {
		s.Jobs = []models.Job{}
	}
	if p.StatusCounts != nil {
		s.StatusCounts = *p.StatusCounts
	}
	return s
}

// refresh runs prepare under mu, fetches outside it, then applies the result
// under mu if no newer fetch was issued in between.
func refresh[Q any](
	ctx context.Context,
	mu *sync.Mutex,
	seq *Sequencer,
	logger *zap.Logger,
	prepare func() (Q, error),
	call func(context.Context, Q) (*models.JobPage, error),
	apply func(*models.JobPage) Snapshot,
) (Snapshot, error) {
	mu.Lock()
	q, err := prepare()
	if err != nil {
		mu.Unlock()
		return Snapshot{}, err
	}
	ticket := seq.Begin(ctx)
	mu.Unlock()

	page, err := call(ticket.Ctx, q)

	mu.Lock()
	defer mu.Unlock()
	if !seq.Done(ticket) {
		logger.Debug("discarding stale listing response", zap.Uint64("ticket", ticket.id))
		return Snapshot{}, ErrStale
	}
	if err != nil {
		return Snapshot{}, err
	}
	return apply(page), nil
}

func validPage(n int) error {
	if n < 1 {
		return errors.InvalidInput("page must be at least 1", nil)
	}
	return nil
}

// Listing is the public job listing.
type Listing struct {
	jobs   JobLister
	logger *zap.Logger
	seq    Sequencer

	mu      sync.Mutex
	filters Filters
	page    int
	snap    Snapshot
}

func NewListing(jobs JobLister, logger *zap.Logger, initial Filters) *Listing {
	return &Listing{jobs: jobs, logger: logger, filters: initial, page: 1}
}

func (l *Listing) Filters() Filters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters
}

func (l *Listing) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *Listing) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// URLQuery is the shareable query string for the current filters.
func (l *Listing) URLQuery() string {
	return l.Filters().Encode()
}

func (l *Listing) Query() api.JobQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queryLocked()
}

func (l *Listing) queryLocked() api.JobQuery {
	return api.JobQuery{
		Page:           l.page,
		Limit:          PublicPageSize,
		Keywords:       l.filters.Keywords,
		Location:       l.filters.Location,
		Role:           l.filters.Role,
		Experience:     l.filters.Experience,
		EmploymentType: l.filters.EmploymentType,
	}
}

func (l *Listing) Fetch(ctx context.Context) (Snapshot, error) {
	return l.mutate(ctx, func() error { return nil })
}

func (l *Listing) SetFilter(ctx context.Context, field Field, value string) (Snapshot, error) {
	return l.mutate(ctx, func() error {
		if err := l.filters.Set(field, value); err != nil {
			return err
		}
		l.page = 1
		return nil
	})
}

func (l *Listing) SetFilters(ctx context.Context, f Filters) (Snapshot, error) {
	return l.mutate(ctx, func() error {
		l.filters = f
		l.page = 1
		return nil
	})
}

func (l *Listing) SetPage(ctx context.Context, n int) (Snapshot, error) {
	return l.mutate(ctx, func() error {
		if err := validPage(n); err != nil {
			return err
		}
		l.page = n
		return nil
	})
}

func (l *Listing) Clear(ctx context.Context) (Snapshot, error) {
	return l.SetFilters(ctx, Filters{})
}

func (l *Listing) mutate(ctx context.Context, fn func() error) (Snapshot, error) {
	return refresh(ctx, &l.mu, &l.seq, l.logger,
		func() (api.JobQuery, error) {
			if err := fn(); err != nil {
				return api.JobQuery{}, err
			}
			return l.queryLocked(), nil
		},
		l.jobs.List,
		func(p *models.JobPage) Snapshot {
			l.snap = snapshotOf(p)
			return l.snap
		})
}
