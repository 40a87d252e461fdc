package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/mohamedkhairy/market-scanner/internal/pipeline"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

// Scheduler runs the scan pipeline on a cron spec, typically once per
// trading day after the close.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
	ctx      context.Context
}

// New creates a Scheduler. The cron spec uses six fields (with seconds).
func New(ctx context.Context, p *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		pipeline: p,
		ctx:      ctx,
	}
}

// Register registers the daily scan job.
func (s *Scheduler) Register(cronSpec string) error {
	if _, err := s.cron.AddFunc(cronSpec, s.dailyScan); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Info("scheduler stopped")
}

// RunNow executes the daily scan immediately, for manual trigger or
// RUN_ON_START.
func (s *Scheduler) RunNow() {
	s.dailyScan()
}

func (s *Scheduler) dailyScan() {
	logger.Info("running daily scan")
	payload, err := s.pipeline.RunToday(s.ctx)
	if err != nil {
		logger.Error("daily scan failed", logger.ErrorField(err))
		return
	}
	logger.Info("daily scan complete",
		logger.String("run_id", payload.RunID),
		logger.Int("discovered", payload.Stats.Discovered),
		logger.Int("removed", len(payload.Removed)))
}
