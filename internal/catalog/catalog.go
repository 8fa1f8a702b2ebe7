package catalog

import (
	"sort"
	"time"
)

// Catalog is an immutable snapshot of normalized items.
type Catalog struct {
	Items    []Item
	Source   string
	LoadedAt time.Time
}

// New builds a snapshot, keeping the first occurrence of each identity.
func New(items []Item, source string) *Catalog {
	seen := make(map[Identity]struct{}, len(items))
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		id := it.Identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, it)
	}
	return &Catalog{
		Items:    kept,
		Source:   source,
		LoadedAt: time.Now(),
	}
}

// Len returns the number of items in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Brands returns the distinct brands, sorted.
func (c *Catalog) Brands() []string {
	set := make(map[string]struct{})
	for _, it := range c.Items {
		set[it.Brand] = struct{}{}
	}
	brands := make([]string, 0, len(set))
	for b := range set {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}

// CategoryCounts returns the number of items per category.
func (c *Catalog) CategoryCounts() map[Category]int {
	counts := make(map[Category]int)
	for _, it := range c.Items {
		counts[it.Category]++
	}
	return counts
}

// Age returns how long ago the snapshot was built.
func (c *Catalog) Age() time.Duration {
	return time.Since(c.LoadedAt)
}
