package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when the catalog database has not been opened.
var ErrNotConnected = errors.New("database not initialized")

// Config holds the catalog database connection settings
type Config struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DefaultConfig returns pool settings sized for catalog reads and imports.
func DefaultConfig() Config {
	return Config{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Validate checks the pool bounds. The URL is checked on Connect because
// file and url catalog sources never open the database.
func (c Config) Validate() error {
	if c.MaxConnections <= 0 {
		return fmt.Errorf("database.max_connections must be positive, got %d", c.MaxConnections)
	}
	if c.MinConnections < 0 || c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database.min_connections must be between 0 and %d, got %d", c.MaxConnections, c.MinConnections)
	}
	return nil
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("database url not set")
	}
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	pc.MaxConns = int32(c.MaxConnections)
	pc.MinConns = int32(c.MinConnections)
	pc.MaxConnLifetime = c.MaxConnLifetime
	pc.MaxConnIdleTime = c.MaxConnIdleTime
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

var (
	pool   *pgxpool.Pool
	poolMu sync.RWMutex
)

// Connect opens the catalog database, verifies it and makes sure the
// catalog_items table exists. Calling it again while connected is a no-op.
func Connect(ctx context.Context, cfg Config) error {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	pc, err := cfg.poolConfig()
	if err != nil {
		return err
	}

	newPool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := newPool.Ping(ctx); err != nil {
		newPool.Close()
		return fmt.Errorf("error connecting to database: %w", err)
	}
	if err := NewCatalogRepository(newPool).EnsureSchema(ctx); err != nil {
		newPool.Close()
		return err
	}

	pool = newPool
	log.Info().
		Str("component", "database").
		Int32("max_conns", pc.MaxConns).
		Msg("Catalog database ready")
	return nil
}

// Close closes the database connection pool
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Pool returns the connection pool, or nil when not connected
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// Status pings the catalog database
func Status(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return ErrNotConnected
	}
	return p.Ping(ctx)
}

// PoolStats is a snapshot of the connection pool reported by /health and
// the db_pool metrics.
type PoolStats struct {
	Connected     bool  `json:"connected"`
	MaxConns      int32 `json:"maxConns"`
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
}

// Stats returns connection pool statistics
func Stats() PoolStats {
	p := Pool()
	if p == nil {
		return PoolStats{}
	}
	return statsOf(p.Stat())
}

func statsOf(s *pgxpool.Stat) PoolStats {
	return PoolStats{
		Connected:     true,
		MaxConns:      s.MaxConns(),
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
	}
}
