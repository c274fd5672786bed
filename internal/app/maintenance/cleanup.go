package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nkyriakou/themis/internal/notify"
	"github.com/nkyriakou/themis/pkg/logger"
)

const (
	defaultRetentionSpec = "@daily"
	defaultExpirySpec    = "@hourly"
)

// Cleaner coordinates the background notification sweeps: purging read
// notifications past the retention window and removing expired ones.
type Cleaner struct {
	notifications *notify.Service
	cron          *cron.Cron
	log           *zap.Logger
	retention     int

	retentionSchedule string
	expirySchedule    string
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

// WithRetentionDays adjusts how long read notifications are retained before cleanup.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithRetentionSchedule overrides the cron specification for the retention sweep.
func WithRetentionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.retentionSchedule = spec
		}
	}
}

// WithExpirySchedule overrides the cron specification for the expiry sweep.
func WithExpirySchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.expirySchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil notification
// service results in a Cleaner that schedules nothing.
func NewCleaner(notifications *notify.Service, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		notifications:     notifications,
		retention:         notify.DefaultRetentionDays,
		retentionSchedule: defaultRetentionSpec,
		expirySchedule:    defaultExpirySpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the sweeps with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.notifications == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.retentionSchedule, func() {
		ctx := context.Background()
		removed, err := c.notifications.CleanupRead(ctx, c.retention)
		if err != nil {
			c.log.Warn("retention sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			c.log.Info("retention sweep completed", zap.Int64("removed", removed))
		}
	}); err != nil {
		return err
	}

	if _, err := c.cron.AddFunc(c.expirySchedule, func() {
		ctx := context.Background()
		removed, err := c.notifications.CleanupExpired(ctx)
		if err != nil {
			c.log.Warn("expiry sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			c.log.Info("expiry sweep completed", zap.Int64("removed", removed))
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

// RunOnce executes both sweeps sequentially. Primarily used in tests and
// during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.notifications == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if _, err := c.notifications.CleanupRead(ctx, c.retention); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.notifications.CleanupExpired(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
