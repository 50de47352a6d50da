package events

import (
	"context"
	"encoding/json"
	"time"

	"jobboard/common/telemetry"
	"jobboard/internal/config"
	"jobboard/internal/errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/events")

type Publisher interface {
	Publish(ctx context.Context, ev AuditEvent) error
	Close()
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// Connect dials NATS with reconnects enabled.
func Connect(cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("jobboard"),
		nats.Timeout(cfg.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return conn, nil
}

// NewPublisher returns a NATS-backed publisher, or a no-op one when no NATS
// URL is configured.
func NewPublisher(logger *zap.Logger, cfg *config.Config) (Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS not configured, audit events are logged only")
		return NewNopPublisher(logger), nil
	}

	conn, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	return &natsPublisher{
		conn:    conn,
		subject: cfg.AuditSubject,
		logger:  logger,
	}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, ev AuditEvent) error {
	_, span := tracer.Start(ctx, "PublishAuditEvent")
	defer span.End()

	data, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling audit event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.String("audit.action", string(ev.Action)),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish audit event",
			zap.String("id", ev.ID),
			zap.String("action", string(ev.Action)),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published audit event",
		zap.String("id", ev.ID),
		zap.String("action", string(ev.Action)),
		zap.String("subject", p.subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.logger.Warn("failed to drain NATS connection", zap.Error(err))
		}
	}
}

type nopPublisher struct {
	logger *zap.Logger
}

func NewNopPublisher(logger *zap.Logger) Publisher {
	return &nopPublisher{logger: logger}
}

func (p *nopPublisher) Publish(_ context.Context, ev AuditEvent) error {
	p.logger.Debug("audit event",
		zap.String("id", ev.ID),
		zap.String("action", string(ev.Action)),
		zap.String("actor", ev.Actor),
		zap.String("target", ev.Target))
	return nil
}

func (p *nopPublisher) Close() {}
