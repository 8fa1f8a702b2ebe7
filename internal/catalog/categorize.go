package catalog

import "strings"

// categoryRule assigns a category when any keyword occurs in the item name.
type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules are tried in order; the first match wins. Matching is
// case-sensitive so "L" (litre) does not catch lowercase Latin names.
var categoryRules = []categoryRule{
	{CategoryHousehold, []string{
		"샴푸", "린스", "컨디셔너", "엘라스틴", "세제", "제습제", "페브리즈",
		"다우니", "면도기", "중형", "대형", "라이너", "폼", "탈취", "테크",
		"샤프란", "바디피트", "좋은느낌", "디어스킨", "칫솔", "치약", "비누",
		"티슈", "물티슈", "밴드", "가글", "핸드크림", "하기스", "아우라", "LG",
	}},
	{CategorySnack, []string{
		"킷캣", "쿠키", "하리보", "초코", "베리", "캔디", "젤리", "스낵",
		"과자", "허쉬", "아몬드", "칩", "봉지", "껌", "아이스크림", "하겐",
		"마카롱", "파인트", "바", "콘", "초콜릿", "마쉬멜로우", "너츠", "견과",
		"짱셔요", "후룻컵", "크래커", "엠앤엠즈",
	}},
	{CategoryMeal, []string{
		"밥", "찌개", "육개장", "곰탕", "해장국", "사골", "비비고", "피자",
		"만두", "오뚜기밥", "선지", "된장찌개", "참치", "김치찌개", "컵밥",
		"도시락", "삼각김밥", "김밥", "샌드위치", "햄버거", "죽", "국밥",
		"면", "라면", "파스타", "안주야",
	}},
	{CategoryWater, []string{
		"생수", "삼다수", "에비앙", "아이시스", "평창수", "백산수", "볼빅",
	}},
	{CategoryBeverage, []string{
		"ml", "L", "콜라", "사이다", "소다", "차", "보리", "타임", "에이드",
		"커피", "쥬스", "음료", "스프라이트", "맥콜", "워터", "우유", "라떼",
		"드링크", "탄산",
	}},
}

// Categorize classifies an item by name keywords, falling back to
// CategoryOther.
func Categorize(name string) Category {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
