package worker

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/frontdesk-supervisor/internal/domain"
)

// Sweeper closes pending tickets whose deadline has passed.
type Sweeper interface {
	SweepTimeouts(ctx context.Context) ([]domain.Ticket, error)
}

// SweepWorker runs the timeout sweep on a cron schedule.
type SweepWorker struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
}

// NewSweepWorker creates a worker; call Start to schedule it.
func NewSweepWorker(sweeper Sweeper, logger *zap.Logger) *SweepWorker {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger(logger)
	return &SweepWorker{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		sweeper: sweeper,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// cronLogger sends cron's own messages, including recovered panics, to zap
// at error level.
func cronLogger(logger *zap.Logger) cron.Logger {
	std, err := zap.NewStdLogAt(logger, zapcore.ErrorLevel)
	if err != nil {
		std = zap.NewStdLog(logger)
	}
	return cron.PrintfLogger(std)
}

// Start schedules the sweep, e.g. "@every 1m" or "*/5 * * * *".
func (w *SweepWorker) Start(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.RunOnce); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("sweep worker started", zap.String("schedule", schedule))
	return nil
}

// RunOnce performs one sweep. Overlapping runs are skipped.
func (w *SweepWorker) RunOnce() {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Debug("previous sweep still running; skipping")
		return
	}
	defer w.running.Store(false)

	timedOut, err := w.sweeper.SweepTimeouts(w.ctx)
	if err != nil {
		w.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if len(timedOut) > 0 {
		ids := make([]string, 0, len(timedOut))
		for _, t := range timedOut {
			ids = append(ids, t.ID)
		}
		w.logger.Info("tickets timed out", zap.Strings("ticket_ids", ids))
	}
}

// Stop waits for a running sweep to finish and cancels future ones.
func (w *SweepWorker) Stop() {
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.logger.Info("sweep worker stopped")
}
