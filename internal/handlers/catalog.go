package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honeycombo/combo-service/internal/catalog"
	"github.com/honeycombo/combo-service/internal/catalogcache"
)

// CategorySummary describes one catalog category
type CategorySummary struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Count       int    `json:"count"`
	Requestable bool   `json:"requestable"`
}

// ListCategoriesResponse lists the filter values offered by the catalog
type ListCategoriesResponse struct {
	Categories []CategorySummary `json:"categories"`
	Brands     []string          `json:"brands"`
	Promotions []string          `json:"promotions"`
	Items      int               `json:"items"`
}

// RefreshCatalogResponse reports a completed catalog reload
type RefreshCatalogResponse struct {
	Source   string    `json:"source"`
	Items    int       `json:"items"`
	LoadedAt time.Time `json:"loadedAt"`
}

var categoryOrder = []catalog.Category{
	catalog.CategoryMeal,
	catalog.CategorySnack,
	catalog.CategoryBeverage,
	catalog.CategoryWater,
	catalog.CategoryOther,
	catalog.CategoryHousehold,
}

// ListCategories lists categories, brands and promotions present in the catalog
// GET /api/v1/catalog/categories
func ListCategories(c *gin.Context) {
	if catalogStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not initialized"})
		return
	}
	cat, err := catalogStore.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not loaded yet"})
		return
	}

	counts := cat.CategoryCounts()
	resp := ListCategoriesResponse{
		Categories: make([]CategorySummary, 0, len(categoryOrder)),
		Brands:     cat.Brands(),
		Items:      cat.Len(),
	}
	for _, category := range categoryOrder {
		resp.Categories = append(resp.Categories, CategorySummary{
			ID:          string(category),
			Label:       category.Label(),
			Count:       counts[category],
			Requestable: category.Requestable(),
		})
	}

	promos := make(map[string]struct{})
	for _, it := range cat.Items {
		promos[string(it.Promotion)] = struct{}{}
	}
	resp.Promotions = make([]string, 0, len(promos))
	for p := range promos {
		resp.Promotions = append(resp.Promotions, p)
	}
	sort.Strings(resp.Promotions)

	c.JSON(http.StatusOK, resp)
}

// RefreshCatalog forces a catalog reload
// POST /internal/catalog/refresh
func RefreshCatalog(c *gin.Context) {
	if catalogStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not initialized"})
		return
	}

	cat, err := catalogStore.Refresh(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, catalogcache.ErrCircuitOpen):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "refresh did not finish in time"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, RefreshCatalogResponse{
		Source:   cat.Source,
		Items:    cat.Len(),
		LoadedAt: cat.LoadedAt,
	})
}

// CatalogFreshness reports the age and state of the cached catalog
// GET /internal/catalog/freshness
func CatalogFreshness(c *gin.Context) {
	if catalogStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog not initialized"})
		return
	}
	c.JSON(http.StatusOK, catalogStore.Freshness())
}
