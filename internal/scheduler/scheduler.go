// Package scheduler keeps the scene cache warm for a fixed set of symbols.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "FinChart/pkg/logger"
)

// Warmer refreshes the cached snapshot for a symbol. Every projection's scene
// is computed from that snapshot on request.
type Warmer interface {
	Warm(ctx context.Context, symbol string, n int) error
}

// Job lists what to refresh on every tick.
type Job struct {
	Symbols []string
	N       int
	Timeout time.Duration
}

type Scheduler struct {
	cron   *cron.Cron
	warmer Warmer
	job    Job
	l      *applogger.Logger
	ctx    context.Context
}

func New(ctx context.Context, warmer Warmer, job Job, l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	if job.Timeout <= 0 {
		job.Timeout = 10 * time.Second
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		warmer: warmer,
		job:    job,
		l:      l,
		ctx:    ctx,
	}
}

// Register adds the warm task under spec, a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Strings("symbols", s.job.Symbols))
}

// Stop waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

// RunNow refreshes every symbol. Failures are logged and the remaining
// symbols still run.
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(s.ctx, s.job.Timeout)
	defer cancel()

	start := time.Now()
	failed := 0
	for _, sym := range s.job.Symbols {
		if err := s.warmer.Warm(ctx, sym, s.job.N); err != nil {
			failed++
			s.l.Warn("scheduler.warm error", applogger.String("symbol", sym), applogger.Error(err))
		}
	}
	s.l.Info("scheduler.warm done",
		applogger.Int("symbols", len(s.job.Symbols)),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
