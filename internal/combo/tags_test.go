package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaggerClassification(t *testing.T) {
	tg := NewTagger(DefaultRedundancyGroups())

	tests := []struct {
		name      string
		soup      bool
		starch    bool
		side      bool
		complete  bool
		preferred bool
	}{
		{name: "된장찌개", soup: true, preferred: true},
		{name: "김치찌개밥", soup: false, starch: false, side: true, preferred: true},
		{name: "햇반 210g", starch: true},
		{name: "소고기 장조림", side: true},
		{name: "참치마요 삼각김밥", starch: true, side: true, complete: true, preferred: true},
		{name: "볶음밥용 소스", side: true},
		{name: "도시락김", side: true},
		{name: "에그 샌드위치", complete: true, preferred: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := tg.Tag(tt.name)
			assert.Equal(t, tt.soup, tags.Soup(), "soup")
			assert.Equal(t, tt.starch, tags.Starch(), "starch")
			assert.Equal(t, tt.side, tags.Side(), "side")
			assert.Equal(t, tt.complete, tags.CompleteMeal(), "complete meal")
			assert.Equal(t, tt.preferred, tags.PreferredMeal(), "preferred meal")
		})
	}
}

func TestTaggerGroups(t *testing.T) {
	groups := DefaultRedundancyGroups()
	tg := NewTagger(groups)

	assert.Equal(t, uint32(1), tg.Tag("제주 삼다수 2L").Groups())
	assert.Equal(t, uint32(2), tg.Tag("신라면 컵").Groups())
	assert.Equal(t, uint32(4), tg.Tag("코카콜라").Groups())
	assert.Equal(t, uint32(0), tg.Tag("포카칩").Groups())
}

func TestRedundancy(t *testing.T) {
	groups := DefaultRedundancyGroups()
	tg := NewTagger(groups)

	t.Run("two drinks are redundant", func(t *testing.T) {
		members := []entry{
			{tags: tg.Tag("코카콜라")},
			{tags: tg.Tag("칠성사이다")},
		}
		assert.False(t, redundancyValid(members))
		assert.False(t, CheckRedundancy(groups, []string{"코카콜라", "칠성사이다"}))
	})

	t.Run("different groups are fine", func(t *testing.T) {
		members := []entry{
			{tags: tg.Tag("코카콜라")},
			{tags: tg.Tag("신라면")},
			{tags: tg.Tag("평창수")},
		}
		assert.True(t, redundancyValid(members))
		assert.True(t, CheckRedundancy(groups, []string{"코카콜라", "신라면", "평창수"}))
	})

	t.Run("check is idempotent", func(t *testing.T) {
		names := []string{"코카콜라", "포카칩"}
		for i := 0; i < 3; i++ {
			assert.True(t, CheckRedundancy(groups, names))
		}
	})
}
