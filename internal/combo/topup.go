package combo

import (
	"math/rand"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// topUpCategories picks the categories extra items are drawn from: meal and
// snack when both were requested, else whichever of the two was, else all
// requested categories.
func topUpCategories(requested []catalog.Category) []catalog.Category {
	var meal, snack bool
	for _, c := range requested {
		switch c {
		case catalog.CategoryMeal:
			meal = true
		case catalog.CategorySnack:
			snack = true
		}
	}
	switch {
	case meal && snack:
		return []catalog.Category{catalog.CategoryMeal, catalog.CategorySnack}
	case meal:
		return []catalog.Category{catalog.CategoryMeal}
	case snack:
		return []catalog.Category{catalog.CategorySnack}
	}
	return requested
}

// topUpCandidates collects working-pool items in the top-up categories.
func topUpCandidates(pools map[catalog.Category][]entry, categories []catalog.Category) []entry {
	var out []entry
	for _, c := range categories {
		out = append(out, pools[c]...)
	}
	return out
}

// topUp greedily adds shuffled candidates while enough budget remains.
func (e *Engine) topUp(w *working, candidates []entry, budget int64, rng *rand.Rand) {
	if len(candidates) == 0 {
		return
	}
	shuffled := make([]entry, len(candidates))
	copy(shuffled, candidates)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	for _, c := range shuffled {
		if budget-w.total < e.cfg.TopUpThreshold || len(w.members) >= e.cfg.MaxMembers {
			return
		}
		if w.fits(c, budget, e.cfg.MaxMembers) {
			w.add(c)
		}
	}
}
