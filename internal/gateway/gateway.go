// Package gateway serves the public job board over HTTP: the filtered
// listing, filter options, job detail and the apply redirect.
package gateway

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/listing"
	"jobboard/internal/models"
	"jobboard/internal/render"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RelatedLimit is how many other jobs the detail view shows.
const RelatedLimit = 3

type Jobs interface {
	List(ctx context.Context, q api.JobQuery) (*models.JobPage, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	TrackClick(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

type Server struct {
	app    *fiber.App
	jobs   Jobs
	logger *zap.Logger
	addr   string
}

func New(jobs Jobs, logger *zap.Logger, cfg *config.Config) *Server {
	s := &Server{jobs: jobs, logger: logger, addr: cfg.GatewayAddr}
	s.app = fiber.New(fiber.Config{
		AppName:               "jobboard",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(s.logRequests)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Get("/api/jobs", s.listJobs)
	s.app.Get("/api/jobs/filters", s.filterOptions)
	s.app.Get("/api/jobs/:id", s.jobDetail)
	s.app.Post("/api/jobs/:id/apply", s.apply)
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Register binds the listener to the fx lifecycle.
func (s *Server) Register(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := s.app.Listen(s.addr); err != nil {
					s.logger.Error("gateway stopped", zap.Error(err))
				}
			}()
			s.logger.Info("gateway listening", zap.String("addr", s.addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.app.ShutdownWithContext(ctx)
		},
	})
}

type showing struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Total int `json:"total"`
}

type listResponse struct {
	Filters    listing.Filters   `json:"filters"`
	Query      string            `json:"query"`
	Jobs       []models.Job      `json:"jobs"`
	Pagination models.Pagination `json:"pagination"`
	Pages      listing.Controls  `json:"pages"`
	Showing    showing           `json:"showing"`
}

func (s *Server) listJobs(c *fiber.Ctx) error {
	filters, err := listing.ParseFilters(string(c.Request().URI().QueryString()))
	if err != nil {
		return err
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			return errors.InvalidInput("page must be a number", nil)
		}
	}

	l := listing.NewListing(s.jobs, s.logger, filters)
	snap, err := l.SetPage(c.UserContext(), page)
	if err != nil {
		return err
	}

	from, to := listing.Range(snap.Pagination.CurrentPage, listing.PublicPageSize, snap.Pagination.TotalJobs)
	return c.JSON(listResponse{
		Filters:    filters,
		Query:      l.URLQuery(),
		Jobs:       snap.Jobs,
		Pagination: snap.Pagination,
		Pages:      listing.NewControls(snap.Pagination),
		Showing:    showing{From: from, To: to, Total: snap.Pagination.TotalJobs},
	})
}

func (s *Server) filterOptions(c *fiber.Ctx) error {
	opts, err := s.jobs.FilterOptions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(opts)
}

type detailResponse struct {
	Job         *models.Job  `json:"job"`
	Description string       `json:"description"`
	Related     []models.Job `json:"related"`
}

func (s *Server) jobDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	job, err := s.jobs.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(detailResponse{
		Job:         job,
		Description: render.PlainText(job.Description),
		Related:     s.related(ctx, job.ID),
	})
}

// related lists other recent jobs. A failure only costs the sidebar.
func (s *Server) related(ctx context.Context, id string) []models.Job {
	related := []models.Job{}
	page, err := s.jobs.List(ctx, api.JobQuery{Limit: RelatedLimit + 1})
	if err != nil {
		s.logger.Warn("failed to load related jobs", zap.String("job_id", id), zap.Error(err))
		return related
	}
	for _, j := range page.Jobs {
		if j.ID == id {
			continue
		}
		related = append(related, j)
		if len(related) == RelatedLimit {
			break
		}
	}
	return related
}

func (s *Server) apply(c *fiber.Ctx) error {
	ctx := c.UserContext()
	job, err := s.jobs.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.jobs.TrackClick(ctx, job.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"hiringLink": job.HiringLink})
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		err = s.handleError(c, err)
	}
	s.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err))
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": errors.Message(err, fallbackFor(code))})
}

func statusFor(err error) int {
	var de *errors.DomainError
	if !stderrors.As(err, &de) {
		return fiber.StatusInternalServerError
	}
	switch de.Type {
	case errors.ErrTypeNotFound:
		return fiber.StatusNotFound
	case errors.ErrTypeInvalidInput:
		return fiber.StatusBadRequest
	case errors.ErrTypeUnauthorized:
		return fiber.StatusUnauthorized
	case errors.ErrTypeForbidden:
		return fiber.StatusForbidden
	case errors.ErrTypeConflict:
		return fiber.StatusConflict
	case errors.ErrTypeUnavailable:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func fallbackFor(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "Job not found"
	case fiber.StatusBadGateway:
		return "Job board is unavailable"
	}
	return "Something went wrong"
}
