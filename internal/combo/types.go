package combo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// Request contains the parameters for one recommendation.
type Request struct {
	Budget     int64               // Spending ceiling in won (must be > 0)
	Categories []catalog.Category  // At least two distinct requestable categories
	Brands     []string            // Optional brand allow-list (empty = all)
	Promotions []catalog.Promotion // Optional promotion allow-list (empty = all)
	Keyword    string              // Optional substring at least one member name must contain
	Seed       *int64              // Optional seed for reproducible sampling
}

// Validate checks the caller-owned constraints before any engine work.
func (r *Request) Validate() error {
	if r.Budget <= 0 {
		return ErrInvalidRequest{Field: "budget", Reason: "must be positive", Index: -1}
	}
	seen := make(map[catalog.Category]struct{}, len(r.Categories))
	for i, c := range r.Categories {
		if !c.Requestable() {
			return ErrInvalidRequest{Field: "categories", Reason: fmt.Sprintf("unknown category %q", c), Index: i}
		}
		seen[c] = struct{}{}
	}
	if len(seen) < 2 {
		return ErrInvalidRequest{Field: "categories", Reason: "at least 2 distinct categories are required", Index: -1}
	}
	return nil
}

// categories returns the requested categories without repeats, in order.
func (r *Request) categories() []catalog.Category {
	seen := make(map[catalog.Category]struct{}, len(r.Categories))
	out := make([]catalog.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (r *Request) wants(c catalog.Category) bool {
	for _, rc := range r.Categories {
		if rc == c {
			return true
		}
	}
	return false
}

// eligible applies the brand and promotion allow-lists.
func (r *Request) eligible(it catalog.Item) bool {
	if len(r.Brands) > 0 {
		ok := false
		for _, b := range r.Brands {
			if strings.EqualFold(b, it.Brand) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(r.Promotions) > 0 {
		ok := false
		for _, p := range r.Promotions {
			if p == it.Promotion {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Combination is an accepted bundle of items. It is never mutated after
// acceptance.
type Combination struct {
	Items          []catalog.Item `json:"items"`
	TotalPrice     int64          `json:"totalPrice"`     // sum of sticker prices
	SavedMoney     int64          `json:"savedMoney"`     // sum of free units x sticker price
	PerUnitSavings int64          `json:"perUnitSavings"` // sum of sticker minus unit price
	Signature      string         `json:"signature"`
}

// Names returns the member names in member order.
func (c *Combination) Names() []string {
	names := make([]string, len(c.Items))
	for i, it := range c.Items {
		names[i] = it.Name
	}
	return names
}

// Result reasons reported with an empty combination list.
const (
	ReasonInsufficientCandidates = "insufficient_candidates"
	ReasonNoFeasibleCombination  = "no_feasible_combination"
)

// Result is the outcome of a recommendation.
type Result struct {
	Combinations []*Combination
	Reason       string           // set when Combinations is empty
	Category     catalog.Category // category without candidates, if any
	SeedsScanned int
	Accepted     int
	Discarded    map[string]int // discard counts by reason
}

// Err describes why the result is empty, or returns nil.
func (r *Result) Err() error {
	switch r.Reason {
	case ReasonInsufficientCandidates:
		return ErrInsufficientCandidates{Category: r.Category}
	case ReasonNoFeasibleCombination:
		return ErrNoFeasibleCombination
	}
	return nil
}

// ErrInvalidRequest is returned when a request fails validation.
type ErrInvalidRequest struct {
	Field  string
	Reason string
	Index  int // -1 when not tied to a list element
}

func (e ErrInvalidRequest) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return e.Field + ": " + e.Reason
}

// ErrInsufficientCandidates means a requested category had no item under
// the price ceiling.
type ErrInsufficientCandidates struct {
	Category catalog.Category
}

func (e ErrInsufficientCandidates) Error() string {
	return fmt.Sprintf("no candidates in category %s", e.Category)
}

// ErrNoFeasibleCombination means every seed was discarded.
var ErrNoFeasibleCombination = errors.New("no feasible combination")
