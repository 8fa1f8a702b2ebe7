// Package catalogcache keeps the current catalog snapshot in memory and
// refreshes it from a Loader.
package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/honeycombo/combo-service/internal/catalog"
)

var (
	// ErrNotReady is returned before the first snapshot has been loaded.
	ErrNotReady = errors.New("catalog not loaded yet")

	// ErrCircuitOpen is returned while repeated load failures keep the loader disabled.
	ErrCircuitOpen = errors.New("catalog loader circuit breaker open")
)

const loadKey = "catalog"

// Loader produces a complete catalog snapshot.
type Loader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Freshness describes the state of the cached snapshot.
type Freshness struct {
	Ready        bool       `json:"ready"`
	Source       string     `json:"source,omitempty"`
	Items        int        `json:"items"`
	LoadedAt     *time.Time `json:"loadedAt,omitempty"`
	AgeSeconds   float64    `json:"ageSeconds"`
	Stale        bool       `json:"stale"`
	BreakerState string     `json:"breakerState"`
	LastError    string     `json:"lastError,omitempty"`
	LastErrorAt  *time.Time `json:"lastErrorAt,omitempty"`
}

type loadFailure struct {
	err error
	at  time.Time
}

// Cache holds the current catalog and swaps in new snapshots atomically.
// Readers never block on a refresh once the first load succeeded.
type Cache struct {
	loader Loader
	cfg    Config

	current    atomic.Pointer[catalog.Catalog]
	lastErr    atomic.Pointer[loadFailure]
	refreshing atomic.Bool

	sf      singleflight.Group
	breaker *gobreaker.CircuitBreaker[*catalog.Catalog]
	gate    *WarmupGate
	metrics *MetricsRecorder
	logger  *zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New creates a cache over loader. The cache starts empty; call Warmup or
// Refresh to install the first snapshot.
func New(loader Loader, cfg Config) (*Cache, error) {
	if loader == nil {
		return nil, fmt.Errorf("catalog cache: loader is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.With().Str("component", "catalog_cache").Logger()
	c := &Cache{
		loader:  loader,
		cfg:     cfg,
		gate:    NewWarmupGate(&logger),
		metrics: NewMetricsRecorder(),
		logger:  &logger,
		stop:    make(chan struct{}),
	}

	c.breaker = gobreaker.NewCircuitBreaker[*catalog.Catalog](gobreaker.Settings{
		Name:        "catalog_loader",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("circuit_breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return c, nil
}

// Get returns the current snapshot. A stale snapshot is still served and a
// background refresh is started.
func (c *Cache) Get() (*catalog.Catalog, error) {
	cat := c.current.Load()
	if cat == nil {
		return nil, ErrNotReady
	}
	age := cat.Age()
	c.metrics.RecordAge(age)
	if age > c.cfg.TTL {
		c.metrics.RecordStaleServe()
		c.refreshAsync()
	}
	return cat, nil
}

// Wait blocks until the first snapshot is available or ctx ends.
func (c *Cache) Wait(ctx context.Context) (*catalog.Catalog, error) {
	if !c.gate.Wait(ctx) {
		return nil, ctx.Err()
	}
	return c.Get()
}

// Warmup performs the initial load.
func (c *Cache) Warmup(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}

// Refresh loads a new snapshot and installs it. Concurrent callers share a
// single loader call. The load itself runs under its own timeout, so a
// caller giving up does not cancel it for the others.
func (c *Cache) Refresh(ctx context.Context) (*catalog.Catalog, error) {
	ch := c.sf.DoChan(loadKey, func() (any, error) {
		return c.load()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog.Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load() (*catalog.Catalog, error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), c.cfg.LoadTimeout)
	defer cancel()

	start := time.Now()
	cat, err := c.breaker.Execute(func() (*catalog.Catalog, error) {
		return c.loader.Load(loadCtx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.RecordLoadError("breaker_open")
			err = ErrCircuitOpen
		} else {
			c.metrics.RecordLoadError("loader")
			err = fmt.Errorf("load catalog: %w", err)
		}
		c.lastErr.Store(&loadFailure{err: err, at: time.Now()})
		c.logger.Error().Err(err).Msg("Catalog load failed")
		return nil, err
	}
	if cat == nil {
		err := fmt.Errorf("load catalog: loader returned no catalog")
		c.lastErr.Store(&loadFailure{err: err, at: time.Now()})
		return nil, err
	}

	c.current.Store(cat)
	c.lastErr.Store(nil)
	c.gate.Ready()

	duration := time.Since(start)
	c.metrics.RecordLoad(sourceKind(cat.Source), duration, cat.Len())
	c.logger.Info().
		Str("source", cat.Source).
		Int("items", cat.Len()).
		Dur("duration", duration).
		Msg("Catalog snapshot installed")

	return cat, nil
}

// sourceKind trims a snapshot source to its scheme for metric labels.
func sourceKind(source string) string {
	kind, _, _ := strings.Cut(source, ":")
	return kind
}

func (c *Cache) refreshAsync() {
	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.refreshing.Store(false)
		if _, err := c.Refresh(context.Background()); err != nil {
			c.logger.Warn().Err(err).Msg("Background catalog refresh failed, serving stale snapshot")
		}
	}()
}

// StartRefresher reloads the catalog every TTL plus a random jitter until
// ctx is done or Stop is called.
func (c *Cache) StartRefresher(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(c.nextRefresh())
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-timer.C:
				if _, err := c.Refresh(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("Scheduled catalog refresh failed")
				}
				timer.Reset(c.nextRefresh())
			}
		}
	}()
	c.logger.Info().Dur("ttl", c.cfg.TTL).Dur("jitter", c.cfg.RefreshJitter).Msg("Catalog refresher started")
}

func (c *Cache) nextRefresh() time.Duration {
	d := c.cfg.TTL
	if c.cfg.RefreshJitter > 0 {
		d += rand.N(c.cfg.RefreshJitter)
	}
	return d
}

// Stop stops the refresher and waits for in-flight background refreshes.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}

// IsReady reports whether a snapshot has been installed.
func (c *Cache) IsReady() bool {
	return c.gate.IsReady()
}

// IsHealthy reports whether a snapshot is available and the loader is not
// tripped.
func (c *Cache) IsHealthy() bool {
	return c.IsReady() && c.breaker.State() != gobreaker.StateOpen
}

// Freshness reports the state of the current snapshot.
func (c *Cache) Freshness() Freshness {
	f := Freshness{
		Ready:        c.IsReady(),
		BreakerState: c.breaker.State().String(),
	}
	if cat := c.current.Load(); cat != nil {
		loadedAt := cat.LoadedAt
		age := cat.Age()
		f.Source = cat.Source
		f.Items = cat.Len()
		f.LoadedAt = &loadedAt
		f.AgeSeconds = age.Seconds()
		f.Stale = age > c.cfg.TTL
	}
	if lf := c.lastErr.Load(); lf != nil {
		at := lf.at
		f.LastError = lf.err.Error()
		f.LastErrorAt = &at
	}
	return f
}
