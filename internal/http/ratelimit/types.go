package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Config holds outbound fetch throttling and retry configuration
type Config struct {
	RequestsPerSecond int `mapstructure:"requests_per_second" json:"requestsPerSecond"`
	MaxRetries        int `mapstructure:"max_retries" json:"maxRetries"`
	InitialBackoffMs  int `mapstructure:"initial_backoff_ms" json:"initialBackoffMs"`
	MaxBackoffMs      int `mapstructure:"max_backoff_ms" json:"maxBackoffMs"`
}

// DefaultConfig returns the default rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		MaxRetries:        3,
		InitialBackoffMs:  100,
		MaxBackoffMs:      30000,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %d", c.RequestsPerSecond)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.InitialBackoffMs <= 0 || c.MaxBackoffMs < c.InitialBackoffMs {
		return fmt.Errorf("backoff must satisfy 0 < initial_backoff_ms <= max_backoff_ms")
	}
	return nil
}

// RateLimiter spaces outbound requests to the configured rate
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new rate limiter with the given config
func NewRateLimiter(config Config) *RateLimiter {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultConfig().RequestsPerSecond
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Throttle blocks until the next request may be sent or ctx is done
func (r *RateLimiter) Throttle(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
