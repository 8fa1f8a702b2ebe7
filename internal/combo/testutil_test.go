package combo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/honeycombo/combo-service/internal/catalog"
)

func item(name string, category catalog.Category, promo catalog.Promotion, price int64) catalog.Item {
	return catalog.NewItem(name, "CU", promo, category, price)
}

func newTestEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, WithRandSource(func() *rand.Rand {
		return rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}))
	require.NoError(t, err)
	return e
}

func seed(v int64) *int64 { return &v }

func entries(tg *Tagger, items ...catalog.Item) []entry {
	return tg.index(items)
}
