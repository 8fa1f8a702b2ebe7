package combo

import (
	"strings"

	"github.com/honeycombo/combo-service/internal/catalog"
)

// Tag is a semantic property derived from an item name.
type Tag uint16

const (
	TagSoup Tag = 1 << iota
	TagIntegrated
	TagStarchWord
	TagNotStarch
	TagSide
	TagCompleteWord
	TagMealWord
	TagMealExclude
)

// keywords is a substring matcher over item names.
type keywords []string

func (k keywords) match(name string) bool {
	for _, w := range k {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

var (
	soupWords = keywords{"국", "찌개", "탕", "전골", "부대찌개", "순두부", "육개장", "곰탕", "설렁탕"}

	// dishes that already come with rice
	integratedWords = keywords{"컵밥", "찌개밥", "국밥", "덮밥"}

	starchWords = keywords{
		"즉석밥", "백미밥", "현미밥", "잡곡밥", "햇반", "오뚜기밥", "밥", "볶음밥",
		"덮밥", "컵밥", "주먹밥", "김밥", "삼각김밥", "김치볶음밥", "새우볶음밥", "소불고기덮밥",
	}

	// names containing a rice word that are not a rice staple
	notStarchWords = keywords{
		"장조림", "양갱", "스낵", "과자", "초콜릿", "젤리", "사탕", "비스킷", "빵", "케이크",
		"안주", "반찬", "요리", "소스", "양념", "볶음", "김치", "단무지", "밥도둑", "밥이랑",
	}

	sideWords = keywords{
		"장조림", "볶음", "김치", "고기", "햄", "소시지", "소세지", "참치", "김", "만두",
		"돈까스", "치킨", "너겟", "젓갈", "절임", "무침", "조림", "구이", "튀김", "계란",
		"어묵", "두부", "샐러드", "소스", "드레싱", "참기름", "고추장", "쌈장", "닭가슴살",
		"육포", "스테이크",
	}

	completeWords = keywords{"도시락", "삼각김밥", "김밥", "컵밥", "덮밥", "샌드위치", "햄버거"}

	mealWords = keywords{
		"도시락", "김밥", "샌드위치", "햄버거", "핫도그", "주먹밥", "샐러드", "면", "밥",
		"삼각김밥", "국", "찌개", "탕", "즉석밥", "덮밥", "볶음밥", "죽", "컵밥", "밥버거",
	}

	// ingredients and packaging that borrow meal words
	mealExcludeWords = keywords{
		"도시락김", "김밥김", "삼각김밥용", "볶음밥용", "찌개양념", "국물용", "소스", "양념",
		"세트", "재료", "용기", "즉석", "조리",
	}
)

var tagWords = []struct {
	tag   Tag
	words keywords
}{
	{TagSoup, soupWords},
	{TagIntegrated, integratedWords},
	{TagStarchWord, starchWords},
	{TagNotStarch, notStarchWords},
	{TagSide, sideWords},
	{TagCompleteWord, completeWords},
	{TagMealWord, mealWords},
	{TagMealExclude, mealExcludeWords},
}

// Tags is the precomputed classification of one item.
type Tags struct {
	bits   Tag
	groups uint32 // bit i set when the item belongs to redundancy group i
}

// Has reports whether every bit in t is set.
func (s Tags) Has(t Tag) bool { return s.bits&t == t }

// Soup is a soup or stew that still needs rice.
func (s Tags) Soup() bool { return s.Has(TagSoup) && !s.Has(TagIntegrated) }

// Starch is a plain rice staple.
func (s Tags) Starch() bool { return s.Has(TagStarchWord) && !s.Has(TagNotStarch) }

// Side is a side dish that goes with rice.
func (s Tags) Side() bool { return s.Has(TagSide) }

// CompleteMeal is a self-sufficient single dish.
func (s Tags) CompleteMeal() bool { return s.Has(TagCompleteWord) && !s.Has(TagMealExclude) }

// PreferredMeal ranks ahead of other meal-category items in the meal pool.
func (s Tags) PreferredMeal() bool { return s.Has(TagMealWord) && !s.Has(TagMealExclude) }

// Groups returns the redundancy group bitmask.
func (s Tags) Groups() uint32 { return s.groups }

// Tagger classifies item names once so that pool building, repair and the
// redundancy check never re-scan raw text.
type Tagger struct {
	groups []RedundancyGroup
}

// NewTagger creates a tagger that also resolves membership in groups.
func NewTagger(groups []RedundancyGroup) *Tagger {
	return &Tagger{groups: groups}
}

// Tag classifies a single name.
func (t *Tagger) Tag(name string) Tags {
	var s Tags
	for _, tw := range tagWords {
		if tw.words.match(name) {
			s.bits |= tw.tag
		}
	}
	for i, g := range t.groups {
		if g.Matches(name) {
			s.groups |= 1 << uint(i)
		}
	}
	return s
}

// entry is an item paired with its tags for the duration of one request.
type entry struct {
	item catalog.Item
	tags Tags
}

// index tags every item once.
func (t *Tagger) index(items []catalog.Item) []entry {
	out := make([]entry, len(items))
	for i, it := range items {
		out[i] = entry{item: it, tags: t.Tag(it.Name)}
	}
	return out
}
