package catalogcache

import (
	"fmt"
	"time"
)

// Config controls snapshot lifetime and loader protection.
type Config struct {
	// TTL after which the snapshot is considered stale.
	TTL time.Duration `mapstructure:"ttl" default:"15m"`

	// RefreshJitter is the upper bound of random delay added to each refresh.
	RefreshJitter time.Duration `mapstructure:"refresh_jitter" default:"30s"`

	// LoadTimeout bounds a single loader call.
	LoadTimeout time.Duration `mapstructure:"load_timeout" default:"30s"`

	// BreakerFailures is the number of consecutive load failures that open the breaker.
	BreakerFailures uint32 `mapstructure:"breaker_failures" default:"3"`

	// BreakerTimeout is how long the breaker stays open before a trial load.
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" default:"1m"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:             15 * time.Minute,
		RefreshJitter:   30 * time.Second,
		LoadTimeout:     30 * time.Second,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("catalog cache: ttl must be positive, got %s", c.TTL)
	}
	if c.RefreshJitter < 0 {
		return fmt.Errorf("catalog cache: refresh_jitter must not be negative, got %s", c.RefreshJitter)
	}
	if c.LoadTimeout <= 0 {
		return fmt.Errorf("catalog cache: load_timeout must be positive, got %s", c.LoadTimeout)
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("catalog cache: breaker_failures must be at least 1")
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("catalog cache: breaker_timeout must be positive, got %s", c.BreakerTimeout)
	}
	return nil
}
