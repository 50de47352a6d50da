// Package sweeper periodically asks the API to age jobs from active to dump
// and from dump to inactive.
package sweeper

import (
	"context"
	"sync"
	"time"

	"jobboard/common/telemetry"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/events"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/sweeper")

type StatusProcessor interface {
	ProcessStatusChanges(ctx context.Context) (*models.SweepResult, error)
}

type Sweeper struct {
	jobs      StatusProcessor
	publisher events.Publisher
	logger    *zap.Logger
	interval  time.Duration
	actor     string

	mutex    sync.Mutex
	isActive bool
}

func New(jobs StatusProcessor, publisher events.Publisher, logger *zap.Logger, cfg *config.Config) *Sweeper {
	return &Sweeper{
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
		interval:  cfg.SweepInterval,
		actor:     "sweeper",
	}
}

// SetActor names who the audit events are attributed to.
func (s *Sweeper) SetActor(actor string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.actor = actor
}

// Start sweeps once immediately and then on every tick until ctx is done.
// A second concurrent Start returns at once.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	if s.interval <= 0 {
		s.mutex.Unlock()
		return errors.InvalidInput("sweep interval must be positive", nil)
	}
	s.isActive = true
	s.mutex.Unlock()
	defer s.Stop()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("status sweeper started", zap.Duration("interval", s.interval))
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("initial sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("status sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("periodic sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Sweeper) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isActive = false
}

func (s *Sweeper) Active() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.isActive
}

func (s *Sweeper) RunOnce(ctx context.Context) (*models.SweepResult, error) {
	ctx, span := tracer.Start(ctx, "Sweeper.RunOnce")
	defer span.End()

	res, err := s.jobs.ProcessStatusChanges(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		telemetry.Int("moved_to_dump", res.MovedToDump),
		telemetry.Int("moved_to_inactive", res.MovedToInactive),
	)
	s.logger.Info("processed status changes",
		zap.Int("moved_to_dump", res.MovedToDump),
		zap.Int("moved_to_inactive", res.MovedToInactive))

	s.mutex.Lock()
	actor := s.actor
	s.mutex.Unlock()

	ev := events.NewAuditEvent(events.ActionSweep, actor, "", map[string]interface{}{
		"movedToDump":     res.MovedToDump,
		"movedToInactive": res.MovedToInactive,
	})
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish sweep audit event", zap.Error(err))
	}
	return res, nil
}
