package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/honeycombo/combo-service/internal/catalog"
	"github.com/honeycombo/combo-service/internal/catalogcache"
	"github.com/honeycombo/combo-service/internal/combo"
	"github.com/honeycombo/combo-service/internal/middleware"
)

// ============================================================================
// Combination Endpoints
// ============================================================================

// ComboRequest represents a combination recommendation request
type ComboRequest struct {
	Budget     int64    `json:"budget" binding:"required,gt=0,lte=10000000"`
	Categories []string `json:"categories" binding:"required,min=2,max=5,dive,combo_category"`
	Brands     []string `json:"brands,omitempty" binding:"omitempty,max=20,dive,required"`
	Promotions []string `json:"promotions,omitempty" binding:"omitempty,dive,promotion"`
	Keyword    string   `json:"keyword,omitempty" binding:"max=50"`
	Seed       *int64   `json:"seed,omitempty"`
}

// ComboItem represents one item of a recommended combination
type ComboItem struct {
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Promotion     string  `json:"promotion"`
	Category      string  `json:"category"`
	CategoryLabel string  `json:"categoryLabel"`
	Price         int64   `json:"price"`
	UnitPrice     int64   `json:"unitPrice"`
	PayCount      int     `json:"payCount"`
	TotalCount    int     `json:"totalCount"`
	DiscountRate  float64 `json:"discountRate"`
	ImageURL      string  `json:"imageUrl,omitempty"`
}

// Combination represents a recommended bundle
type Combination struct {
	Items          []*ComboItem `json:"items"`
	TotalPrice     int64        `json:"totalPrice"`
	SavedMoney     int64        `json:"savedMoney"`
	PerUnitSavings int64        `json:"perUnitSavings"`
	Remaining      int64        `json:"remaining"`
}

// ComboResponse represents the recommendation response
type ComboResponse struct {
	Combinations    []*Combination `json:"combinations"`
	Total           int            `json:"total"`
	Reason          string         `json:"reason,omitempty"`
	Message         string         `json:"message,omitempty"`
	CatalogLoadedAt time.Time      `json:"catalogLoadedAt"`
	RequestID       string         `json:"requestId,omitempty"`
}

// CatalogStore is the catalog cache as seen by the handlers.
type CatalogStore interface {
	Get() (*catalog.Catalog, error)
	Refresh(ctx context.Context) (*catalog.Catalog, error)
	Freshness() catalogcache.Freshness
	IsReady() bool
	IsHealthy() bool
}

// Global instances (initialized by the application)
var (
	comboEngine  *combo.Engine
	catalogStore CatalogStore
)

// InitCombos wires the engine and catalog used by the handlers.
// This should be called during application startup
func InitCombos(engine *combo.Engine, store CatalogStore) error {
	if err := RegisterValidators(); err != nil {
		return err
	}
	comboEngine = engine
	catalogStore = store
	return nil
}

// RecommendCombos handles combination recommendations
// POST /api/v1/combos
func RecommendCombos(c *gin.Context) {
	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": validationDetails(err),
		})
		return
	}

	if comboEngine == nil || catalogStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Combination engine not initialized"})
		return
	}

	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not loaded yet"})
		return
	}

	ctx := c.Request.Context()
	res, err := comboEngine.Recommend(ctx, cat.Items, toEngineRequest(&req))
	if err != nil {
		var invalid combo.ErrInvalidRequest
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request",
				"details": []FieldError{{Field: invalid.Field, Message: invalid.Error()}},
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
		default:
			zerolog.Ctx(ctx).Error().Err(err).Msg("Recommendation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	resp := &ComboResponse{
		Combinations:    make([]*Combination, len(res.Combinations)),
		Total:           len(res.Combinations),
		Reason:          res.Reason,
		CatalogLoadedAt: cat.LoadedAt,
		RequestID:       middleware.GetRequestID(c),
	}
	if rerr := res.Err(); rerr != nil {
		resp.Message = rerr.Error()
	}
	for i, combination := range res.Combinations {
		resp.Combinations[i] = toCombination(combination, req.Budget)
	}

	c.JSON(http.StatusOK, resp)
}

func toEngineRequest(req *ComboRequest) *combo.Request {
	out := &combo.Request{
		Budget:  req.Budget,
		Brands:  req.Brands,
		Keyword: req.Keyword,
		Seed:    req.Seed,
	}
	for _, raw := range req.Categories {
		// Binding already rejected unknown categories.
		cat, _ := catalog.ParseCategory(raw)
		out.Categories = append(out.Categories, cat)
	}
	for _, raw := range req.Promotions {
		out.Promotions = append(out.Promotions, catalog.ParsePromotion(raw))
	}
	return out
}

func toCombination(c *combo.Combination, budget int64) *Combination {
	items := make([]*ComboItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = toComboItem(it)
	}
	return &Combination{
		Items:          items,
		TotalPrice:     c.TotalPrice,
		SavedMoney:     c.SavedMoney,
		PerUnitSavings: c.PerUnitSavings,
		Remaining:      budget - c.TotalPrice,
	}
}

func toComboItem(it catalog.Item) *ComboItem {
	return &ComboItem{
		Name:          it.Name,
		Brand:         it.Brand,
		Promotion:     string(it.Promotion),
		Category:      string(it.Category),
		CategoryLabel: it.Category.Label(),
		Price:         it.Price,
		UnitPrice:     it.UnitPrice,
		PayCount:      it.PayCount,
		TotalCount:    it.TotalCount,
		DiscountRate:  it.DiscountRate,
		ImageURL:      it.ImageURL,
	}
}
