package combo

// repairMeal enforces meal completeness on a seed: a soup needs a rice
// staple, and a rice staple on its own needs a side dish. It reports false
// when no budget-fitting item can complete the seed.
func (e *Engine) repairMeal(w *working, subs *subPools, budget int64) bool {
	complete := w.any(Tags.CompleteMeal)
	soup := w.any(Tags.Soup)
	starch := w.any(Tags.Starch)

	if soup && !starch && !complete {
		if !e.inject(w, subs.starch, budget) {
			return false
		}
		starch = true
	}

	if !soup && !complete && starch && !w.any(Tags.Side) {
		if !e.inject(w, subs.side, budget) {
			return false
		}
	}
	return true
}

// inject appends the first candidate that fits.
func (e *Engine) inject(w *working, candidates []entry, budget int64) bool {
	for _, c := range candidates {
		if w.fits(c, budget, e.cfg.MaxMembers) {
			w.add(c)
			return true
		}
	}
	return false
}
