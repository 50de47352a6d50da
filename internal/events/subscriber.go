package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, ev AuditEvent)

// Subscriber delivers audit events from subject to a handler.
type Subscriber struct {
	logger  *zap.Logger
	nc      *nats.Conn
	subject string
	handle  HandlerFunc
	sub     *nats.Subscription
}

func NewSubscriber(logger *zap.Logger, nc *nats.Conn, subject string, handle HandlerFunc) *Subscriber {
	return &Subscriber{
		logger:  logger,
		nc:      nc,
		subject: subject,
		handle:  handle,
	}
}

func (s *Subscriber) Start() error {
	sub, err := s.nc.Subscribe(s.subject, s.handleMsg)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub
	s.logger.Info("subscribed to audit events", zap.String("subject", s.subject))
	return nil
}

func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}

// Register ties the subscription to an fx lifecycle.
func (s *Subscriber) Register(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return s.Start() },
		OnStop:  func(context.Context) error { return s.Stop() },
	})
}

func (s *Subscriber) handleMsg(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handleAuditEvent")
	defer span.End()

	ev, err := Decode(msg.Data)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to decode audit event",
			zap.Error(err),
			zap.String("subject", msg.Subject))
		return
	}
	s.handle(ctx, ev)
}
