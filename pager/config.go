package pager

import "time"

// Config holds the paging tunables. Zero or negative fields are
// replaced with defaults on normalization, so a partially filled
// config is safe to use.
type Config struct {
	// PageSize is the unit of fetch and trim accounting.
	PageSize int
	// LoadThreshold is how close (in rows) the cursor may get to a
	// window edge before a background load is forced.
	LoadThreshold int
	// PrefetchThreshold is the larger edge distance used for
	// speculative loads on idle ticks.
	PrefetchThreshold int
	// MaxLoadedPages bounds the window size.
	MaxLoadedPages int
	// TrimDistancePages is how many pages to keep on each side of the
	// cursor's page when trimming.
	TrimDistancePages int
	// PollInterval is the cadence of the blocking progress loop.
	PollInterval time.Duration
	// ProgressDelay is how long an operation may run before the
	// spinner shows up. Connect-class operations use zero.
	ProgressDelay time.Duration
	// TeardownTimeout bounds waiting on in-flight operations during
	// view close and disconnect.
	TeardownTimeout time.Duration
}

const (
	defaultPageSize          = 1000
	defaultLoadThreshold     = 50
	defaultMaxLoadedPages    = 5
	defaultTrimDistancePages = 2
	defaultPollInterval      = 50 * time.Millisecond
	defaultProgressDelay     = 250 * time.Millisecond
	defaultTeardownTimeout   = 500 * time.Millisecond
)

func DefaultConfig() *Config {
	return &Config{
		PageSize:          defaultPageSize,
		LoadThreshold:     defaultLoadThreshold,
		PrefetchThreshold: defaultPageSize,
		MaxLoadedPages:    defaultMaxLoadedPages,
		TrimDistancePages: defaultTrimDistancePages,
		PollInterval:      defaultPollInterval,
		ProgressDelay:     defaultProgressDelay,
		TeardownTimeout:   defaultTeardownTimeout,
	}
}

// normalized returns a copy with defaults filled in for unset fields.
func (c *Config) normalized() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}

	if c.PageSize > 0 {
		out.PageSize = c.PageSize
	}
	if c.LoadThreshold > 0 {
		out.LoadThreshold = c.LoadThreshold
	}
	if c.PrefetchThreshold > 0 {
		out.PrefetchThreshold = c.PrefetchThreshold
	} else {
		out.PrefetchThreshold = out.PageSize
	}
	if c.MaxLoadedPages > 0 {
		out.MaxLoadedPages = c.MaxLoadedPages
	}
	if c.TrimDistancePages > 0 {
		out.TrimDistancePages = c.TrimDistancePages
	}
	if c.PollInterval > 0 {
		out.PollInterval = c.PollInterval
	}
	if c.ProgressDelay > 0 {
		out.ProgressDelay = c.ProgressDelay
	}
	if c.TeardownTimeout > 0 {
		out.TeardownTimeout = c.TeardownTimeout
	}

	return out
}

type Option func(*Config)

func WithPageSize(size int) Option {
	return func(c *Config) { c.PageSize = size }
}

func WithLoadThreshold(rows int) Option {
	return func(c *Config) { c.LoadThreshold = rows }
}

func WithPrefetchThreshold(rows int) Option {
	return func(c *Config) { c.PrefetchThreshold = rows }
}

func WithMaxLoadedPages(pages int) Option {
	return func(c *Config) { c.MaxLoadedPages = pages }
}

func WithTrimDistancePages(pages int) Option {
	return func(c *Config) { c.TrimDistancePages = pages }
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) { c.PollInterval = interval }
}

func WithProgressDelay(delay time.Duration) Option {
	return func(c *Config) { c.ProgressDelay = delay }
}

func WithTeardownTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.TeardownTimeout = timeout }
}
