package worktime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"worktime/internal/domain"
)

// Scheduler runs the batch processor on a cron spec, picking up
// whatever unprocessed events accumulated since the last run.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
	spec   string
}

func NewScheduler(engine *Engine, log *slog.Logger, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		log:    log.With("component", "scheduler"),
		spec:   spec,
	}
}

// Start registers the processing job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.log.Info("no processing schedule configured, scheduler idle")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	report, err := s.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	if err != nil {
		s.log.Error("scheduled run failed", "error", err)
		return
	}
	s.log.Info("scheduled run finished",
		"pairs", report.PairsProcessed, "skipped", report.PairsSkipped,
		"failed", report.PairsFailed, "sessions", report.SessionsCreated,
		"summaries", report.SummariesWritten, "anomalies", report.Anomalies.Total(),
		"elapsed", report.Elapsed)
}
