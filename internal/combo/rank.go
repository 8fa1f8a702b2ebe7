package combo

import (
	"sort"
	"strings"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// signature is the canonical key of a combination: its sorted member names.
func signature(members []entry) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.item.Name
	}
	sort.Strings(names)
	return strings.Join(names, "\x1f")
}

// freeze turns a working combination into an immutable Combination.
func freeze(w *working) *Combination {
	c := &Combination{
		Items:     make([]catalog.Item, len(w.members)),
		Signature: signature(w.members),
	}
	for i, m := range w.members {
		it := m.item
		c.Items[i] = it
		c.TotalPrice += it.Price
		c.SavedMoney += int64(it.FreeUnits()) * it.Price
		c.PerUnitSavings += it.Price - it.UnitPrice
	}
	return c
}

// ranker deduplicates accepted combinations and orders the survivors.
type ranker struct {
	seen     map[string]struct{}
	accepted []*Combination
	max      int
}

func newRanker(max int) *ranker {
	return &ranker{seen: make(map[string]struct{}, max), max: max}
}

// seenBefore reports whether a combination with sig was already accepted.
func (r *ranker) seenBefore(sig string) bool {
	_, ok := r.seen[sig]
	return ok
}

func (r *ranker) accept(c *Combination) {
	r.seen[c.Signature] = struct{}{}
	r.accepted = append(r.accepted, c)
}

func (r *ranker) full() bool {
	return len(r.accepted) >= r.max
}

// top sorts by total spend then savings, both descending, and returns the
// first limit combinations.
func (r *ranker) top(limit int) []*Combination {
	out := make([]*Combination, len(r.accepted))
	copy(out, r.accepted)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPrice != out[j].TotalPrice {
			return out[i].TotalPrice > out[j].TotalPrice
		}
		if out[i].SavedMoney != out[j].SavedMoney {
			return out[i].SavedMoney > out[j].SavedMoney
		}
		return out[i].Signature < out[j].Signature
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// matchesKeyword reports whether any member name contains keyword.
func matchesKeyword(members []entry, keyword string) bool {
	if keyword == "" {
		return true
	}
	kw := strings.ToLower(keyword)
	for _, m := range members {
		if strings.Contains(strings.ToLower(m.item.Name), kw) {
			return true
		}
	}
	return false
}
