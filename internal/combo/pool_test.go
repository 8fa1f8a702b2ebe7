package combo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycombo/combo-service/internal/catalog"
)

func TestSupersetRanking(t *testing.T) {
	e := newTestEngine(t, nil)
	tg := NewTagger(e.groups)

	items := entries(tg,
		item("과자 A", catalog.CategorySnack, catalog.PromotionNone, 2500),
		item("과자 B", catalog.CategorySnack, catalog.PromotionOnePlusOne, 3000),
		item("과자 C", catalog.CategorySnack, catalog.PromotionTwoPlusOne, 2400),
		item("과자 D", catalog.CategorySnack, catalog.PromotionNone, 2000),
		item("과자 E", catalog.CategorySnack, catalog.PromotionNone, 7000), // over the ceiling
		item("콜라", catalog.CategoryBeverage, catalog.PromotionOnePlusOne, 1000),
	)

	got := e.superset(items, catalog.CategorySnack, 10000, 2500)
	names := make([]string, len(got))
	for i, en := range got {
		names[i] = en.item.Name
	}
	// discount first, then closeness to the 2500 target
	assert.Equal(t, []string{"과자 B", "과자 C", "과자 A", "과자 D"}, names)
}

func TestSupersetPrefersMealDishes(t *testing.T) {
	e := newTestEngine(t, nil)
	tg := NewTagger(e.groups)

	items := entries(tg,
		item("비엔나 소시지", catalog.CategoryMeal, catalog.PromotionOnePlusOne, 2000),
		item("참치김밥", catalog.CategoryMeal, catalog.PromotionNone, 2500),
		item("찌개양념", catalog.CategoryMeal, catalog.PromotionOnePlusOne, 2000),
		item("제육덮밥", catalog.CategoryMeal, catalog.PromotionNone, 4000),
	)

	got := e.superset(items, catalog.CategoryMeal, 10000, 5000)
	require.Len(t, got, 4)
	assert.Equal(t, "제육덮밥", got[0].item.Name)
	assert.Equal(t, "참치김밥", got[1].item.Name)
	assert.ElementsMatch(t, []string{"비엔나 소시지", "찌개양념"}, []string{got[2].item.Name, got[3].item.Name})
}

func TestSupersetTruncatesAndSamples(t *testing.T) {
	e := newTestEngine(t, nil)
	tg := NewTagger(e.groups)

	var raw []catalog.Item
	for _, it := range diverseCatalog(50) {
		if it.Category == catalog.CategorySnack {
			raw = append(raw, it)
		}
	}
	super := e.superset(entries(tg, raw...), catalog.CategorySnack, 10000, 5000)
	require.Len(t, super, e.cfg.SupersetSize)

	pool := e.samplePool(super, rand.New(rand.NewSource(1)))
	require.Len(t, pool, e.cfg.SampleSize)

	inSuper := make(map[string]bool)
	for _, en := range super {
		inSuper[en.item.Name] = true
	}
	seen := make(map[string]bool)
	for _, en := range pool {
		assert.True(t, inSuper[en.item.Name])
		assert.False(t, seen[en.item.Name], "sample must not repeat items")
		seen[en.item.Name] = true
	}

	small := super[:4]
	assert.Len(t, e.samplePool(small, rand.New(rand.NewSource(1))), 4)
}

func TestBuildSubPools(t *testing.T) {
	cfg := Defaults()
	cfg.StarchPoolSize = 2
	e := newTestEngine(t, cfg)
	tg := NewTagger(e.groups)

	items := entries(tg,
		item("햇반", catalog.CategoryMeal, catalog.PromotionNone, 1500),
		item("현미밥", catalog.CategoryMeal, catalog.PromotionTwoPlusOne, 1800),
		item("잡곡밥", catalog.CategoryMeal, catalog.PromotionNone, 1900),
		item("밥도둑 장조림", catalog.CategoryMeal, catalog.PromotionNone, 1000),
		item("비엔나 소시지", catalog.CategoryOther, catalog.PromotionNone, 2200),
		item("스테이크", catalog.CategoryOther, catalog.PromotionNone, 12000),
	)

	subs := e.buildSubPools(items, []catalog.Category{catalog.CategoryMeal, catalog.CategoryOther}, 10000)
	require.Len(t, subs.starch, 2)
	assert.Equal(t, "현미밥", subs.starch[0].item.Name) // unit price 1200
	assert.Equal(t, "햇반", subs.starch[1].item.Name)

	sides := make([]string, len(subs.side))
	for i, en := range subs.side {
		sides[i] = en.item.Name
	}
	assert.Equal(t, []string{"밥도둑 장조림", "비엔나 소시지"}, sides)
}

func TestBuildSubPoolsKeepsRequestedCategories(t *testing.T) {
	e := newTestEngine(t, nil)
	tg := NewTagger(e.groups)

	items := entries(tg,
		item("햇반", catalog.CategoryMeal, catalog.PromotionNone, 1500),
		item("김서림방지 스프레이", catalog.CategoryHousehold, catalog.PromotionNone, 900),
		item("비엔나 소시지", catalog.CategoryOther, catalog.PromotionNone, 2200),
		item("소고기 장조림", catalog.CategoryMeal, catalog.PromotionNone, 2500),
	)

	subs := e.buildSubPools(items, []catalog.Category{catalog.CategoryMeal, catalog.CategoryBeverage}, 10000)
	for _, en := range append(subs.starch, subs.side...) {
		assert.Equal(t, catalog.CategoryMeal, en.item.Category, en.item.Name)
	}
	require.Len(t, subs.side, 1)
	assert.Equal(t, "소고기 장조림", subs.side[0].item.Name)
}
