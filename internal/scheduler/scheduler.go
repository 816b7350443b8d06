package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/common"
)

const (
	defaultIntervalMinutes = 15
	defaultJobTimeout      = 30 * time.Second
)

// Revalidator refreshes whatever cached screen data has gone stale.
type Revalidator interface {
	Revalidate(ctx context.Context) error
}

// Scheduler periodically revalidates the cached weather and recommendations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Revalidator
	interval  time.Duration
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// New creates a new Scheduler. A non-positive timeout uses 30 seconds.
func New(target Revalidator, interval, timeout time.Duration, logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.WithField("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = defaultIntervalMinutes
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.logger.WithField("interval_minutes", minutes).Info("revalidation scheduled")
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Debug("running revalidation job")
	if err := s.target.Revalidate(ctx); err != nil {
		common.LogWarn(s.logger, "revalidation failed", err, nil)
		return
	}
	s.logger.WithField("elapsed", time.Since(start).String()).Debug("revalidation job completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
