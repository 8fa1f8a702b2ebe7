package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/honeycombo/combo-service/internal/types"
)

// ErrInvalidItem is returned when a raw row cannot become a catalog item.
type ErrInvalidItem struct {
	Row    int
	Field  string
	Reason string
}

func (e ErrInvalidItem) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return e.Field + ": " + e.Reason
}

// NormalizeText trims and collapses whitespace and converts to NFC so that
// names scraped from different sites compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// Normalize converts a raw row into an Item. A missing or unrecognized
// category is filled in from the item name.
func Normalize(raw types.RawItem) (Item, error) {
	name := NormalizeText(raw.Name)
	if name == "" {
		return Item{}, ErrInvalidItem{Row: raw.RowNumber, Field: "name", Reason: "must not be empty"}
	}
	brand := NormalizeText(raw.Brand)
	if brand == "" {
		return Item{}, ErrInvalidItem{Row: raw.RowNumber, Field: "brand", Reason: "must not be empty"}
	}
	if raw.Price < 0 {
		return Item{}, ErrInvalidItem{Row: raw.RowNumber, Field: "price", Reason: "must be non-negative"}
	}

	category, ok := ParseCategory(raw.Category)
	if !ok {
		category = Categorize(name)
	}

	it := NewItem(name, brand, ParsePromotion(raw.Event), category, raw.Price)
	it.ImageURL = strings.TrimSpace(raw.ImageURL)
	return it, nil
}

// NormalizeAll converts rows, skipping invalid ones. The returned errors
// describe each skipped row.
func NormalizeAll(rows []types.RawItem) ([]Item, []error) {
	items := make([]Item, 0, len(rows))
	var errs []error
	for _, r := range rows {
		it, err := Normalize(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, it)
	}
	return items, errs
}
