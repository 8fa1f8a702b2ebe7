package combo

import (
	"math"
	"math/rand"
)

// permutationLimit is the largest cross-product enumerated through a full
// random permutation. Larger products, and products much larger than the
// seed ceiling, are sampled without replacement.
const (
	permutationLimit = 1 << 17
	sparseFactor     = 4
)

// generator lazily yields seeds, one item per category, from the
// cross-product of the working pools in uniformly shuffled order.
type generator struct {
	pools   [][]entry
	total   int64
	limit   int
	rng     *rand.Rand
	order   []int
	seen    map[int64]struct{}
	emitted int
	width   int
}

func newGenerator(pools [][]entry, maxSeeds, width int, rng *rand.Rand) *generator {
	total := int64(1)
	for _, p := range pools {
		n := int64(len(p))
		if n == 0 {
			total = 0
			break
		}
		if total > math.MaxInt64/n {
			total = math.MaxInt64
			break
		}
		total *= n
	}

	limit := maxSeeds
	if total < int64(limit) {
		limit = int(total)
	}

	g := &generator{
		pools: pools,
		total: total,
		limit: limit,
		rng:   rng,
		width: width,
	}
	if total > 0 && total <= permutationLimit && total <= sparseFactor*int64(limit) {
		g.order = rng.Perm(int(total))
	} else {
		g.seen = make(map[int64]struct{}, limit)
	}
	return g
}

// Next returns the next seed. The slice is freshly allocated with spare
// capacity for repair and top-up additions.
func (g *generator) Next() ([]entry, bool) {
	if g.emitted >= g.limit {
		return nil, false
	}

	var idx int64
	if g.order != nil {
		idx = int64(g.order[g.emitted])
	} else {
		for {
			idx = g.rng.Int63n(g.total)
			if _, dup := g.seen[idx]; !dup {
				g.seen[idx] = struct{}{}
				break
			}
		}
	}
	g.emitted++
	return g.decode(idx), true
}

// decode maps a mixed-radix index to one item per pool.
func (g *generator) decode(idx int64) []entry {
	width := g.width
	if width < len(g.pools) {
		width = len(g.pools)
	}
	seed := make([]entry, len(g.pools), width)
	for i := len(g.pools) - 1; i >= 0; i-- {
		n := int64(len(g.pools[i]))
		seed[i] = g.pools[i][idx%n]
		idx /= n
	}
	return seed
}

// Scanned returns the number of seeds emitted so far.
func (g *generator) Scanned() int {
	return g.emitted
}
