package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard/internal/api"
	"jobboard/internal/config"
	"jobboard/internal/console"
	"jobboard/internal/events"
	"jobboard/internal/gateway"
	"jobboard/internal/session"
	"jobboard/internal/sweeper"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 10 * time.Second
)

// env is everything a command can reach once the fx graph is started.
type env struct {
	Config    *config.Config
	Logger    *zap.Logger
	Session   *session.Store
	Jobs      api.JobsAPI
	Admins    api.AdminAPI
	Console   *console.Console
	Publisher events.Publisher
	Sweeper   *sweeper.Sweeper
	Gateway   *gateway.Server
}

func newEnv(
	cfg *config.Config,
	logger *zap.Logger,
	s *session.Store,
	jobs api.JobsAPI,
	admins api.AdminAPI,
	c *console.Console,
	publisher events.Publisher,
	sw *sweeper.Sweeper,
	gw *gateway.Server,
) *env {
	return &env{
		Config:    cfg,
		Logger:    logger,
		Session:   s,
		Jobs:      jobs,
		Admins:    admins,
		Console:   c,
		Publisher: publisher,
		Sweeper:   sw,
		Gateway:   gw,
	}
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		usage(os.Stdout)
		return
	}

	cmd, ok := lookup(name)
	if !ok {
		printError(fmt.Errorf("unknown command %q", name))
		usage(os.Stderr)
		os.Exit(2)
	}

	os.Exit(run(cmd, os.Args[2:]))
}

func run(cmd *command, args []string) int {
	var e *env
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newTokenStore,
			newAPIClient,
			api.NewJobsAPI,
			api.NewAdminAPI,
			api.NewAnalyticsAPI,
			newSession,
			newGuard,
			newPublisher,
			newSweeper,
			newConsole,
			newGateway,
			newEnv,
		),
		fx.Invoke(initTelemetry, restoreSession),
		cmd.wiring(),
		fx.Populate(&e),
	)
	if err := app.Err(); err != nil {
		printError(err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		printError(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.run(ctx, e, args)
	stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if stopErr := app.Stop(stopCtx); stopErr != nil {
		e.Logger.Warn("shutdown incomplete", zap.Error(stopErr))
	}
	_ = e.Logger.Sync()

	if err != nil {
		printError(err)
		return 1
	}
	return 0
}
