package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"FinChart/internal/scheduler"
	"FinChart/pkg/config"
	xhttp "FinChart/pkg/http"
	pkgkafka "FinChart/pkg/kafka"
	applogger "FinChart/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	http      *xhttp.Server
	consumer  *pkgkafka.Consumer
	ingest    pkgkafka.MessageHandler
	scheduler *scheduler.Scheduler
}

// New creates a new App. consumer, ingest and sched may be nil when the
// matching feature is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	ingest pkgkafka.MessageHandler,
	sched *scheduler.Scheduler,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:       cfg,
		log:       log,
		http:      httpServer,
		consumer:  consumer,
		ingest:    ingest,
		scheduler: sched,
	}
}

// Run starts every component and blocks until ctx is done or an interrupt
// arrives, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		_ = a.shutdown()
		return err
	}
	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) start(ctx context.Context) error {
	if a.consumer != nil && a.ingest != nil {
		a.consumer.RegisterHandler(a.ingest)
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.ingest.Topic()))
	}
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	if err := a.http.Start(); err != nil {
		return err
	}
	a.log.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("series", a.cfg.Series.Source),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)
	return nil
}

// shutdown stops components in reverse start order and reports every
// failure.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	err = multierr.Append(err, a.http.Stop(ctx))
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.consumer != nil {
		err = multierr.Append(err, a.consumer.Stop(ctx))
	}
	if err != nil {
		a.log.Error("shutdown finished with errors", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
