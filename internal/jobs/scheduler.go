// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/metrics"
)

// StatusCounter reports how many bookings exist per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler wraps a cron instance whose jobs are skipped while a previous run
// is still going.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{s: logger.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// Add registers fn under a standard 5-field cron spec.
func (s *Scheduler) Add(spec, name string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return err
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs, at most until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RefreshBookingGauges returns a job that copies the per-status booking
// counts into the bookings gauge.
func RefreshBookingGauges(repo StatusCounter, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		counts, err := repo.CountByStatus(ctx)
		if err != nil {
			logger.Warn("refresh booking gauges", zap.Error(err))
			return
		}
		metrics.SetBookingCounts(counts)
	}
}

// Register schedules every job of the server.
func Register(s *Scheduler, repo StatusCounter, logger *zap.Logger) error {
	return s.Add("* * * * *", "booking-gauges", RefreshBookingGauges(repo, logger))
}
