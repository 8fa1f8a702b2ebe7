package combo

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycombo/combo-service/internal/catalog"
)

func makePools(sizes ...int) [][]entry {
	pools := make([][]entry, len(sizes))
	for p, n := range sizes {
		for i := 0; i < n; i++ {
			pools[p] = append(pools[p], entry{
				item: item(fmt.Sprintf("p%d-%d", p, i), catalog.CategoryOther, catalog.PromotionNone, 1000),
			})
		}
	}
	return pools
}

func seedKey(seed []entry) string {
	key := ""
	for _, en := range seed {
		key += en.item.Name + ";"
	}
	return key
}

func TestGeneratorEnumeratesCrossProductOnce(t *testing.T) {
	pools := makePools(3, 4, 2)
	gen := newGenerator(pools, 5000, 5, rand.New(rand.NewSource(1)))

	seen := make(map[string]bool)
	for {
		s, ok := gen.Next()
		if !ok {
			break
		}
		require.Len(t, s, 3)
		assert.GreaterOrEqual(t, cap(s), 5)
		for i, en := range s {
			assert.Contains(t, pools[i], en, "member %d must come from its own pool", i)
		}
		k := seedKey(s)
		assert.False(t, seen[k], "seed %s emitted twice", k)
		seen[k] = true
	}
	assert.Len(t, seen, 24)
	assert.Equal(t, 24, gen.Scanned())
}

func TestGeneratorStopsAtCeiling(t *testing.T) {
	gen := newGenerator(makePools(10, 10, 10), 50, 5, rand.New(rand.NewSource(1)))

	n := 0
	for {
		if _, ok := gen.Next(); !ok {
			break
		}
		n++
	}
	assert.Equal(t, 50, n)
}

func TestGeneratorSamplesLargeProducts(t *testing.T) {
	gen := newGenerator(makePools(11, 11, 11, 11, 11), 2000, 5, rand.New(rand.NewSource(3)))
	require.Nil(t, gen.order, "large products must not materialize a permutation")

	seen := make(map[string]bool)
	for {
		s, ok := gen.Next()
		if !ok {
			break
		}
		k := seedKey(s)
		assert.False(t, seen[k])
		seen[k] = true
	}
	assert.Len(t, seen, 2000)
}

func TestGeneratorOrderDependsOnSeed(t *testing.T) {
	pools := makePools(10, 10)

	first := func(src int64) string {
		s, ok := newGenerator(pools, 100, 5, rand.New(rand.NewSource(src))).Next()
		require.True(t, ok)
		return seedKey(s)
	}
	assert.Equal(t, first(8), first(8))

	distinct := make(map[string]bool)
	for src := int64(0); src < 20; src++ {
		distinct[first(src)] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestGeneratorEmptyPool(t *testing.T) {
	gen := newGenerator(makePools(3, 0), 100, 5, rand.New(rand.NewSource(1)))
	_, ok := gen.Next()
	assert.False(t, ok)
}

func TestGeneratorSamplesWhenCeilingIsSmall(t *testing.T) {
	gen := newGenerator(makePools(10, 10, 10, 10, 10), 5000, 5, rand.New(rand.NewSource(4)))
	assert.Nil(t, gen.order, "100k seeds capped at 5000 must not allocate a permutation")

	dense := newGenerator(makePools(10, 10), 5000, 5, rand.New(rand.NewSource(4)))
	assert.Len(t, dense.order, 100)
}
