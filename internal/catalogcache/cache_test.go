package catalogcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycombo/combo-service/internal/catalog"
)

type fakeLoader struct {
	calls   atomic.Int32
	fail    atomic.Bool
	release chan struct{}
}

func (f *fakeLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail.Load() {
		return nil, errors.New("source unavailable")
	}
	items := []catalog.Item{
		catalog.NewItem("불닭볶음면", "CU", catalog.PromotionOnePlusOne, catalog.CategoryMeal, 1800),
		catalog.NewItem("코카콜라", "GS25", catalog.PromotionTwoPlusOne, catalog.CategoryBeverage, 2000),
	}
	return catalog.New(items, "fake"), nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TTL = time.Hour
	cfg.RefreshJitter = 0
	cfg.LoadTimeout = time.Second
	cfg.BreakerFailures = 2
	cfg.BreakerTimeout = time.Hour
	return cfg
}

func TestCacheNotReadyBeforeWarmup(t *testing.T) {
	c, err := New(&fakeLoader{}, testConfig())
	require.NoError(t, err)

	_, err = c.Get()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.False(t, c.IsReady())
	assert.False(t, c.IsHealthy())
	assert.False(t, c.Freshness().Ready)
}

func TestCacheWarmupInstallsSnapshot(t *testing.T) {
	c, err := New(&fakeLoader{}, testConfig())
	require.NoError(t, err)
	require.NoError(t, c.Warmup(context.Background()))

	cat, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.True(t, c.IsHealthy())

	f := c.Freshness()
	assert.True(t, f.Ready)
	assert.Equal(t, "fake", f.Source)
	assert.Equal(t, 2, f.Items)
	assert.False(t, f.Stale)
	assert.NotNil(t, f.LoadedAt)
	assert.Equal(t, "closed", f.BreakerState)
}

func TestCacheRefreshSharesConcurrentLoads(t *testing.T) {
	loader := &fakeLoader{release: make(chan struct{})}
	c, err := New(loader, testConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCacheKeepsSnapshotOnFailure(t *testing.T) {
	loader := &fakeLoader{}
	c, err := New(loader, testConfig())
	require.NoError(t, err)
	require.NoError(t, c.Warmup(context.Background()))

	loader.fail.Store(true)
	_, err = c.Refresh(context.Background())
	require.Error(t, err)

	cat, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Contains(t, c.Freshness().LastError, "source unavailable")
}

func TestCacheBreakerOpensAfterFailures(t *testing.T) {
	loader := &fakeLoader{}
	loader.fail.Store(true)
	c, err := New(loader, testConfig())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = c.Refresh(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err = c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, "open", c.Freshness().BreakerState)
}

func TestCacheWaitUnblocksAfterWarmup(t *testing.T) {
	c, err := New(&fakeLoader{}, testConfig())
	require.NoError(t, err)

	done := make(chan *catalog.Catalog, 1)
	go func() {
		cat, err := c.Wait(context.Background())
		assert.NoError(t, err)
		done <- cat
	}()

	require.NoError(t, c.Warmup(context.Background()))
	select {
	case cat := <-done:
		assert.Equal(t, 2, cat.Len())
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after warmup")
	}
}

func TestCacheWaitRespectsContext(t *testing.T) {
	c, err := New(&fakeLoader{}, testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCacheStaleTriggersBackgroundRefresh(t *testing.T) {
	loader := &fakeLoader{}
	cfg := testConfig()
	cfg.TTL = time.Millisecond
	c, err := New(loader, cfg)
	require.NoError(t, err)
	require.NoError(t, c.Warmup(context.Background()))

	time.Sleep(5 * time.Millisecond)
	assert.True(t, c.Freshness().Stale)

	_, err = c.Get()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	c.Stop()
}

func TestCacheRefresherReloads(t *testing.T) {
	loader := &fakeLoader{}
	cfg := testConfig()
	cfg.TTL = 10 * time.Millisecond
	c, err := New(loader, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartRefresher(ctx)

	require.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	c.Stop()
	assert.True(t, c.IsReady())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = 0
	_, err := New(&fakeLoader{}, cfg)
	assert.Error(t, err)

	_, err = New(nil, testConfig())
	assert.Error(t, err)
}
