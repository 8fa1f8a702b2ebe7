package catalogcache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// WarmupGate blocks callers until the first catalog snapshot is installed.
type WarmupGate struct {
	mu       sync.RWMutex
	ready    bool
	warmedCh chan struct{}
	logger   *zerolog.Logger
}

// NewWarmupGate creates a new warmup gate.
func NewWarmupGate(logger *zerolog.Logger) *WarmupGate {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &WarmupGate{
		warmedCh: make(chan struct{}),
		logger:   logger,
	}
}

// Wait blocks until warmup is complete or ctx is done.
// Returns false if ctx ended first.
func (g *WarmupGate) Wait(ctx context.Context) bool {
	g.mu.RLock()
	ready, ch := g.ready, g.warmedCh
	g.mu.RUnlock()
	if ready {
		return true
	}

	g.logger.Debug().Msg("Warmup gate: waiting for first catalog snapshot")

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		g.logger.Warn().Msg("Warmup gate: context cancelled while waiting for catalog")
		return false
	}
}

// Ready marks warmup as complete. Safe to call repeatedly.
func (g *WarmupGate) Ready() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.ready {
		g.ready = true
		close(g.warmedCh)
		g.logger.Info().Msg("Warmup gate: catalog loaded, allowing requests")
	}
}

// IsReady reports whether warmup is complete without blocking.
func (g *WarmupGate) IsReady() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ready
}
