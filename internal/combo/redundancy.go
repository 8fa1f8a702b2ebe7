package combo

import "strings"

// RedundancyGroup is a named set of interchangeable item types. An item
// belongs to the group when its name contains any of the tags.
type RedundancyGroup struct {
	Name string   `mapstructure:"name" json:"name"`
	Tags []string `mapstructure:"tags" json:"tags"`
}

// Matches reports whether name belongs to the group.
func (g RedundancyGroup) Matches(name string) bool {
	for _, tag := range g.Tags {
		if tag != "" && strings.Contains(name, tag) {
			return true
		}
	}
	return false
}

// maxRedundancyGroups is bounded by the width of Tags.groups.
const maxRedundancyGroups = 32

// DefaultRedundancyGroups returns the bottled water, ramen and drink groups.
func DefaultRedundancyGroups() []RedundancyGroup {
	return []RedundancyGroup{
		{Name: "water", Tags: []string{"물", "생수", "에비앙", "삼다수", "아이시스", "평창수", "워터"}},
		{Name: "ramen", Tags: []string{"라면", "컵라면", "불닭", "너구리", "신라면", "짜파게티", "비빔면"}},
		{Name: "drinks", Tags: []string{"음료", "콜라", "사이다", "쥬스", "주스", "에이드", "탄산", "커피", "우유", "차", "아메리카노", "라떼"}},
	}
}

// groupsValid reports whether adding a member with mask to the members
// already covered by used keeps every group at one member or fewer.
func groupsValid(used, mask uint32) bool {
	return used&mask == 0
}

// redundancyValid checks a whole member list.
func redundancyValid(members []entry) bool {
	var used uint32
	for _, m := range members {
		if !groupsValid(used, m.tags.groups) {
			return false
		}
		used |= m.tags.groups
	}
	return true
}

// groupMask is the union of group bits over members.
func groupMask(members []entry) uint32 {
	var used uint32
	for _, m := range members {
		used |= m.tags.groups
	}
	return used
}

// CheckRedundancy reports whether at most one of names matches each group.
func CheckRedundancy(groups []RedundancyGroup, names []string) bool {
	for _, g := range groups {
		n := 0
		for _, name := range names {
			if g.Matches(name) {
				n++
			}
		}
		if n > 1 {
			return false
		}
	}
	return true
}
