package offline

import (
	"time"

	"github.com/heet9201/guruai-offline/config"
)

// Retention defaults for the cleanup pass. Overridable via options; there
// is deliberately no second configuration surface.
const (
	// DefaultResponseRetention is how long an unused response/FAQ row
	// survives before cleanup considers it stale.
	DefaultResponseRetention = 30 * 24 * time.Hour

	// DefaultMinAccessCount protects rows proven useful: stale rows at or
	// above this access count are kept.
	DefaultMinAccessCount = 2

	// DefaultUnsyncedRetention is how long a never-synced content row is
	// kept before it is presumed an abandoned draft.
	DefaultUnsyncedRetention = 7 * 24 * time.Hour
)

// Options configures store behavior.
type Options struct {
	// MaxResponsesPerCategory limits live response rows per category. Default: 10.
	MaxResponsesPerCategory int

	// MaxContentItems limits live content rows. Default: 50.
	MaxContentItems int

	// MaxPlans limits live plan rows. Default: 20.
	MaxPlans int

	// MaxFaqs limits live FAQ rows. Default: 100.
	MaxFaqs int

	// MaxCacheBytes is the byte budget reported by usage statistics.
	// Default: 50 MiB. Statistics only; nothing is evicted by byte size.
	MaxCacheBytes int64

	// ResponseRetention is the cleanup window for responses and FAQs.
	ResponseRetention time.Duration

	// MinAccessCount protects frequently used rows from cleanup.
	MinAccessCount int64

	// UnsyncedRetention is the cleanup window for unsynced content.
	UnsyncedRetention time.Duration

	// CleanupInterval is how often the background cleanup pass runs.
	// 0 disables the background loop; RunCleanup can still be called.
	CleanupInterval time.Duration
}

// DefaultOptions returns the defaults from the reference deployment.
func DefaultOptions() Options {
	return Options{
		MaxResponsesPerCategory: 10,
		MaxContentItems:         50,
		MaxPlans:                20,
		MaxFaqs:                 100,
		MaxCacheBytes:           50 * 1024 * 1024,
		ResponseRetention:       DefaultResponseRetention,
		MinAccessCount:          DefaultMinAccessCount,
		UnsyncedRetention:       DefaultUnsyncedRetention,
		CleanupInterval:         0,
	}
}

// Option is a functional option for configuring the store.
type Option func(*Options)

// WithResponseLimit sets the per-category limit for cached responses.
func WithResponseLimit(n int) Option {
	return func(o *Options) { o.MaxResponsesPerCategory = n }
}

// WithContentLimit sets the total limit for cached content.
func WithContentLimit(n int) Option {
	return func(o *Options) { o.MaxContentItems = n }
}

// WithPlanLimit sets the total limit for cached plans.
func WithPlanLimit(n int) Option {
	return func(o *Options) { o.MaxPlans = n }
}

// WithFaqLimit sets the total limit for cached FAQs.
func WithFaqLimit(n int) Option {
	return func(o *Options) { o.MaxFaqs = n }
}

// WithMaxCacheBytes sets the byte budget reported by statistics.
func WithMaxCacheBytes(n int64) Option {
	return func(o *Options) { o.MaxCacheBytes = n }
}

// WithResponseRetention sets the cleanup window for responses and FAQs.
func WithResponseRetention(d time.Duration) Option {
	return func(o *Options) { o.ResponseRetention = d }
}

// WithMinAccessCount sets the access count that protects rows from cleanup.
func WithMinAccessCount(n int64) Option {
	return func(o *Options) { o.MinAccessCount = n }
}

// WithUnsyncedRetention sets the cleanup window for unsynced content.
func WithUnsyncedRetention(d time.Duration) Option {
	return func(o *Options) { o.UnsyncedRetention = d }
}

// WithCleanupInterval enables the background cleanup loop.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *Options) { o.CleanupInterval = d }
}

// FromConfig maps loaded configuration onto store options. Zero config
// values keep the defaults.
func FromConfig(cfg *config.Config) []Option {
	var opts []Option
	if cfg.MaxResponsesPerCategory > 0 {
		opts = append(opts, WithResponseLimit(cfg.MaxResponsesPerCategory))
	}
	if cfg.MaxContentItems > 0 {
		opts = append(opts, WithContentLimit(cfg.MaxContentItems))
	}
	if cfg.MaxPlans > 0 {
		opts = append(opts, WithPlanLimit(cfg.MaxPlans))
	}
	if cfg.MaxFaqs > 0 {
		opts = append(opts, WithFaqLimit(cfg.MaxFaqs))
	}
	if cfg.MaxCacheBytes > 0 {
		opts = append(opts, WithMaxCacheBytes(cfg.MaxCacheBytes))
	}
	if cfg.ResponseRetentionDays > 0 {
		opts = append(opts, WithResponseRetention(time.Duration(cfg.ResponseRetentionDays)*24*time.Hour))
	}
	if cfg.MinAccessCount > 0 {
		opts = append(opts, WithMinAccessCount(int64(cfg.MinAccessCount)))
	}
	if cfg.UnsyncedRetentionDays > 0 {
		opts = append(opts, WithUnsyncedRetention(time.Duration(cfg.UnsyncedRetentionDays)*24*time.Hour))
	}
	if cfg.CleanupIntervalMinutes > 0 {
		opts = append(opts, WithCleanupInterval(time.Duration(cfg.CleanupIntervalMinutes)*time.Minute))
	}
	return opts
}

// applyOptions applies functional options to the defaults.
func applyOptions(opts ...Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
