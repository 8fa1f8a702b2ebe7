package combo

// working is a combination under construction for a single seed.
type working struct {
	members []entry
	total   int64
	groups  uint32
}

func newWorking(seed []entry) *working {
	w := &working{members: seed}
	for _, m := range seed {
		w.total += m.item.Price
		w.groups |= m.tags.groups
	}
	return w
}

func (w *working) contains(en entry) bool {
	id := en.item.Identity()
	for _, m := range w.members {
		if m.item.Identity() == id {
			return true
		}
	}
	return false
}

// fits reports whether en can join without breaking the budget, the member
// cap or a redundancy group, and is not already present.
func (w *working) fits(en entry, budget int64, maxMembers int) bool {
	if len(w.members) >= maxMembers {
		return false
	}
	if w.total+en.item.Price > budget {
		return false
	}
	if !groupsValid(w.groups, en.tags.groups) {
		return false
	}
	return !w.contains(en)
}

func (w *working) add(en entry) {
	w.members = append(w.members, en)
	w.total += en.item.Price
	w.groups |= en.tags.groups
}

func (w *working) any(pred func(Tags) bool) bool {
	for _, m := range w.members {
		if pred(m.tags) {
			return true
		}
	}
	return false
}
