package main

import (
	"context"
	"fmt"

	"jobboard/common/cache"
	"jobboard/common/cache/file"
	"jobboard/common/cache/memory"
	rediscache "jobboard/common/cache/redis"
	"jobboard/common/telemetry"
	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/console"
	"jobboard/internal/events"
	"jobboard/internal/gateway"
	"jobboard/internal/guard"
	"jobboard/internal/models"
	"jobboard/internal/session"
	"jobboard/internal/sweeper"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc := zap.NewProductionConfig()
	if level.Level() == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func newTokenStore(cfg *config.Config, lc fx.Lifecycle) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	if cfg.SessionTTL > 0 {
		opts.DefaultTTL = cfg.SessionTTL
	}
	opts.RedisURL = cfg.RedisAddr
	opts.RedisPassword = cfg.RedisPassword
	opts.RedisDB = cfg.RedisDB
	opts.FilePath = cfg.SessionFile

	var store cache.Cache
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		store = rediscache.New(opts)
	case config.TokenStoreMemory:
		store = memory.New()
	default:
		fc, err := file.New(opts)
		if err != nil {
			return nil, err
		}
		store = fc
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

func newAPIClient(cfg *config.Config, logger *zap.Logger) *api.Client {
	return api.NewClient(logger, api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	})
}

func newSession(client *api.Client, admins api.AdminAPI, tokens cache.Cache, cfg *config.Config, logger *zap.Logger) *session.Store {
	return session.New(client, admins, tokens, cfg.SessionTTL, logger)
}

func newGuard(jobs api.JobsAPI, logger *zap.Logger) *guard.Guard {
	return guard.New(jobs, logger)
}

func newPublisher(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (events.Publisher, error) {
	publisher, err := events.NewPublisher(logger, cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

func newSweeper(jobs api.JobsAPI, publisher events.Publisher, logger *zap.Logger, cfg *config.Config) *sweeper.Sweeper {
	return sweeper.New(jobs, publisher, logger, cfg)
}

func newConsole(
	s *session.Store,
	jobs api.JobsAPI,
	admins api.AdminAPI,
	analytics api.AnalyticsAPI,
	g *guard.Guard,
	sw *sweeper.Sweeper,
	publisher events.Publisher,
	logger *zap.Logger,
	cfg *config.Config,
) *console.Console {
	return console.New(s, jobs, admins, analytics, g, sw, publisher, logger, cfg)
}

func newGateway(jobs api.JobsAPI, logger *zap.Logger, cfg *config.Config) *gateway.Server {
	return gateway.New(jobs, logger, cfg)
}

func initTelemetry(cfg *config.Config, lc fx.Lifecycle) error {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName:  "jobboard",
		CollectorURL: cfg.OTELCollectorURL,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}

// restoreSession validates the persisted token before any command runs.
func restoreSession(s *session.Store, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Init(ctx)
			return nil
		},
	})
}

// serveWiring starts the public gateway and, when the session may run it,
// the periodic status sweeper.
func serveWiring() fx.Option {
	return fx.Invoke(func(gw *gateway.Server, sw *sweeper.Sweeper, s *session.Store, logger *zap.Logger, lc fx.Lifecycle) {
		gw.Register(lc)

		var cancel context.CancelFunc
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				if err := s.Require(models.PermCreateJobs); err != nil {
					logger.Warn("status sweeper disabled", zap.Error(err))
					return nil
				}
				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())
				go func() {
					if err := sw.Start(ctx); err != nil && ctx.Err() == nil {
						logger.Error("status sweeper failed", zap.Error(err))
					}
				}()
				return nil
			},
			OnStop: func(context.Context) error {
				if cancel != nil {
					cancel()
				}
				return nil
			},
		})
	})
}

func auditWiring() fx.Option {
	return fx.Options(
		fx.Provide(newAuditSubscriber),
		fx.Invoke(func(sub *events.Subscriber, lc fx.Lifecycle) {
			sub.Register(lc)
		}),
	)
}

func newAuditSubscriber(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (*events.Subscriber, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("NATS_URL is not set")
	}
	nc, err := events.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			nc.Close()
			return nil
		},
	})
	return events.NewSubscriber(logger, nc, cfg.AuditSubject, printAuditEvent), nil
}
