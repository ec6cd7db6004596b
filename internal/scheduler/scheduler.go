package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"podapi/internal/logging"
	"podapi/internal/service"
)

// Scheduler fires the recognition sweep on a fixed interval. A tick that
// arrives while the previous sweep is still running is skipped.
type Scheduler struct {
	cron     *cron.Cron
	svc      service.RecognitionService
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	runs  *prometheus.CounterVec
	files *prometheus.CounterVec
}

// New builds a stopped Scheduler and registers its metrics on reg.
func New(svc service.RecognitionService, interval time.Duration, reg prometheus.Registerer, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("scheduler interval must be positive")
	}
	log := logging.Component(logger, "scheduler")

	s := &Scheduler{
		svc:      svc,
		interval: interval,
		log:      log,
		now:      time.Now,
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recognition_sweeps_total",
				Help: "Recognition sweeps by outcome.",
			},
			[]string{"outcome"},
		),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recognition_files_total",
				Help: "Files handled by recognition sweeps.",
			},
			[]string{"result"},
		),
	}
	for _, c := range []prometheus.Collector{s.runs, s.files} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	cl := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler_started", slog.String("interval", s.interval.String()))
}

// Stop prevents new sweeps and waits for a running one until ctx expires,
// after which the running sweep's context is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	defer s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one sweep synchronously.
func (s *Scheduler) RunOnce() {
	start := s.now()
	res, err := s.svc.Sweep(s.ctx, start)
	elapsed := time.Since(start)

	s.files.WithLabelValues("processed").Add(float64(res.Files))
	s.files.WithLabelValues("failed").Add(float64(res.Failed))

	if err != nil {
		s.runs.WithLabelValues("error").Inc()
		s.log.Error("recognition_sweep_failed",
			slog.String("day", res.Day),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			logging.Err(err),
		)
		return
	}

	s.runs.WithLabelValues("success").Inc()
	s.log.Info("recognition_sweep_done",
		slog.String("day", res.Day),
		slog.Int("jobs", res.Jobs),
		slog.Int("users", res.Users),
		slog.Int("files", res.Files),
		slog.Int("failed", res.Failed),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	)
}

// cronLogger routes cron's own messages into slog. Routine messages go to debug.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron_"+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron_"+msg, append(keysAndValues, logging.Err(err))...)
}
