package combo

import (
	"math"
	"math/rand"
	"sort"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// rankForCategory orders candidates by discount strength, then closeness of
// the sticker price to the per-category target spend.
func rankForCategory(items []entry, target float64) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].item, items[j].item
		if a.DiscountRate != b.DiscountRate {
			return a.DiscountRate > b.DiscountRate
		}
		da := math.Abs(float64(a.Price) - target)
		db := math.Abs(float64(b.Price) - target)
		if da != db {
			return da < db
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Brand < b.Brand
	})
}

// superset returns the deterministic filtered and ranked candidates for a
// category, truncated to SupersetSize.
func (e *Engine) superset(eligible []entry, category catalog.Category, budget int64, target float64) []entry {
	ceiling := float64(budget) * e.cfg.PriceCeilingRatio

	var all []entry
	for _, en := range eligible {
		if en.item.Category == category && float64(en.item.Price) <= ceiling {
			all = append(all, en)
		}
	}
	rankForCategory(all, target)

	if category == catalog.CategoryMeal {
		var preferred []entry
		for _, en := range all {
			if en.tags.PreferredMeal() {
				preferred = append(preferred, en)
			}
		}
		// both tiers are already ranked; preferred items go first and the
		// second occurrence of each identity is dropped
		merged := make([]entry, 0, len(all))
		seen := make(map[catalog.Identity]struct{}, len(all))
		for _, tier := range [][]entry{preferred, all} {
			for _, en := range tier {
				id := en.item.Identity()
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				merged = append(merged, en)
			}
		}
		all = merged
	}

	if len(all) > e.cfg.SupersetSize {
		all = all[:e.cfg.SupersetSize]
	}
	return all
}

// samplePool draws a uniform random working pool from the superset.
func (e *Engine) samplePool(superset []entry, rng *rand.Rand) []entry {
	if len(superset) <= e.cfg.SampleSize {
		out := make([]entry, len(superset))
		copy(out, superset)
		return out
	}
	perm := rng.Perm(len(superset))
	out := make([]entry, e.cfg.SampleSize)
	for i := range out {
		out[i] = superset[perm[i]]
	}
	return out
}

// subPools holds the repair candidates, cheapest unit price first.
type subPools struct {
	starch []entry
	side   []entry
}

// buildSubPools collects repair candidates from the requested categories
// only, so a repaired combination never leaves the caller's category set.
func (e *Engine) buildSubPools(eligible []entry, categories []catalog.Category, budget int64) *subPools {
	allowed := make(map[catalog.Category]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	var starch, side []entry
	for _, en := range eligible {
		if en.item.Price > budget {
			continue
		}
		if _, ok := allowed[en.item.Category]; !ok {
			continue
		}
		if en.tags.Starch() {
			starch = append(starch, en)
		}
		if en.tags.Side() {
			side = append(side, en)
		}
	}
	byUnitPrice := func(items []entry) {
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].item, items[j].item
			if a.UnitPrice != b.UnitPrice {
				return a.UnitPrice < b.UnitPrice
			}
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.Name < b.Name
		})
	}
	byUnitPrice(starch)
	byUnitPrice(side)

	if len(starch) > e.cfg.StarchPoolSize {
		starch = starch[:e.cfg.StarchPoolSize]
	}
	if len(side) > e.cfg.SidePoolSize {
		side = side[:e.cfg.SidePoolSize]
	}
	return &subPools{starch: starch, side: side}
}
