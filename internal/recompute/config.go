package recompute

import "time"

const (
	DefaultLimit       = 200
	MaxLimit           = 1000
	DefaultConcurrency = 4
	DefaultTimeout     = 60 * time.Second
)

// Config bounds a recompute batch.
type Config struct {
	DefaultLimit int           `json:"default_limit,omitempty"`
	MaxLimit     int           `json:"max_limit,omitempty"`
	Concurrency  int           `json:"concurrency,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty"`
}

// DefaultConfig returns the production batch bounds.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: DefaultLimit,
		MaxLimit:     MaxLimit,
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
	}
}

func (c Config) normalize() Config {
	if c.MaxLimit <= 0 {
		c.MaxLimit = MaxLimit
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}

// EffectiveLimit resolves a requested limit: non-positive means the default, and
// anything above the maximum is capped.
func (c Config) EffectiveLimit(requested int) int {
	c = c.normalize()
	if requested <= 0 {
		return c.DefaultLimit
	}
	if requested > c.MaxLimit {
		return c.MaxLimit
	}
	return requested
}
