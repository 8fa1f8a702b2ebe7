// Package catalog defines the normalized promotional item model shared by the
// loaders, the catalog cache and the combination engine.
package catalog

import (
	"strings"
)

// Category is the display category an item is filed under.
type Category string

const (
	CategoryMeal      Category = "meal"
	CategorySnack     Category = "snack"
	CategoryBeverage  Category = "beverage"
	CategoryWater     Category = "water"
	CategoryOther     Category = "other"
	CategoryHousehold Category = "household"
)

// categoryLabels maps the labels found in scraped catalog files to categories.
var categoryLabels = map[string]Category{
	"meal":      CategoryMeal,
	"식사류":       CategoryMeal,
	"snack":     CategorySnack,
	"간식류":       CategorySnack,
	"beverage":  CategoryBeverage,
	"음료":        CategoryBeverage,
	"water":     CategoryWater,
	"생수":        CategoryWater,
	"other":     CategoryOther,
	"기타":        CategoryOther,
	"household": CategoryHousehold,
	"생활/위생용품":   CategoryHousehold,
}

// ParseCategory resolves an English identifier or a Korean catalog label.
func ParseCategory(raw string) (Category, bool) {
	c, ok := categoryLabels[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Label returns the Korean label used by the catalog files.
func (c Category) Label() string {
	switch c {
	case CategoryMeal:
		return "식사류"
	case CategorySnack:
		return "간식류"
	case CategoryBeverage:
		return "음료"
	case CategoryWater:
		return "생수"
	case CategoryHousehold:
		return "생활/위생용품"
	default:
		return "기타"
	}
}

// Requestable reports whether callers may ask for combinations in c.
func (c Category) Requestable() bool {
	switch c {
	case CategoryMeal, CategorySnack, CategoryBeverage, CategoryWater, CategoryOther:
		return true
	}
	return false
}

// Promotion is a "buy-N-get-M" promotion type.
type Promotion string

const (
	PromotionNone       Promotion = "none"
	PromotionOnePlusOne Promotion = "1+1"
	PromotionTwoPlusOne Promotion = "2+1"
	PromotionThreePlus1 Promotion = "3+1"
	PromotionSale       Promotion = "sale"
)

// ParsePromotion normalizes an event label such as "1 + 1", "2+1" or "SALE".
// Unknown labels (gift events, blanks) map to PromotionNone.
func ParsePromotion(raw string) Promotion {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	switch s {
	case "1+1":
		return PromotionOnePlusOne
	case "2+1":
		return PromotionTwoPlusOne
	case "3+1":
		return PromotionThreePlus1
	case "SALE", "세일", "할인":
		return PromotionSale
	}
	return PromotionNone
}

// Counts returns the number of units paid for and received.
func (p Promotion) Counts() (pay, total int) {
	switch p {
	case PromotionOnePlusOne:
		return 1, 2
	case PromotionTwoPlusOne:
		return 2, 3
	case PromotionThreePlus1:
		return 3, 4
	}
	return 1, 1
}

// Identity is the uniqueness key of an item within a catalog snapshot.
type Identity struct {
	Name      string
	Brand     string
	Promotion Promotion
}

// Item is a single promotional product with its derived price fields.
type Item struct {
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Promotion Promotion `json:"promotion"`
	Category  Category  `json:"category"`
	Price     int64     `json:"price"` // sticker price, won
	ImageURL  string    `json:"imageUrl,omitempty"`

	PayCount     int     `json:"payCount"`
	TotalCount   int     `json:"totalCount"`
	UnitPrice    int64   `json:"unitPrice"`
	DiscountRate float64 `json:"discountRate"`
}

// NewItem builds an item and fills in the promotion-derived fields.
func NewItem(name, brand string, promo Promotion, category Category, price int64) Item {
	it := Item{
		Name:      name,
		Brand:     brand,
		Promotion: promo,
		Category:  category,
		Price:     price,
	}
	it.derive()
	return it
}

func (it *Item) derive() {
	pay, total := it.Promotion.Counts()
	it.PayCount = pay
	it.TotalCount = total
	it.UnitPrice = it.Price * int64(pay) / int64(total)
	it.DiscountRate = float64(total-pay) / float64(total)
}

// Identity returns the (name, brand, promotion) key.
func (it Item) Identity() Identity {
	return Identity{Name: it.Name, Brand: it.Brand, Promotion: it.Promotion}
}

// FreeUnits is the number of units received without paying.
func (it Item) FreeUnits() int {
	return it.TotalCount - it.PayCount
}
