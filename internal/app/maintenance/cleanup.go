package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/campusplacements/portal/internal/services"
	"github.com/campusplacements/portal/pkg/logger"
	"github.com/campusplacements/portal/pkg/metrics"
)

const defaultSweepSpec = "@every 10m"

// Cleaner periodically removes unverified accounts whose OTP expired, so an
// abandoned registration frees its email address for another attempt.
type Cleaner struct {
	registration *services.RegistrationService
	cron         *cron.Cron
	now          func() time.Time
	log          *zap.Logger

	sweepSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sweepSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(registration *services.RegistrationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		registration:  registration,
		now:           time.Now,
		sweepSchedule: defaultSweepSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.registration == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.sweepSchedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("expired registration sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the sweep immediately. Used by the scheduler, in tests,
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.registration != nil {
		removed, err := c.registration.DeleteExpiredUnverified(ctx, c.now())
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			metrics.UnverifiedPurged.Add(float64(removed))
			c.log.Info("removed expired unverified accounts", zap.Int64("count", removed))
		}
	}

	return errs
}
