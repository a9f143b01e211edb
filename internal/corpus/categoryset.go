package corpus

import "strings"

// CategorySet is an immutable set of categories, possibly holding the
// wildcard. Normalize enforces the selection invariants.
type CategorySet uint16

func bit(c Category) CategorySet {
	if c == All {
		return 1
	}
	i := categoryIndex(c)
	if i >= len(AllCategories()) {
		return 0
	}
	return 1 << uint(i+1)
}

func NewCategorySet(cats ...Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s |= bit(c)
	}
	return s
}

// WildcardSet selects every category.
func WildcardSet() CategorySet { return NewCategorySet(All) }

func (s CategorySet) Has(c Category) bool {
	b := bit(c)
	return b != 0 && s&b != 0
}

func (s CategorySet) With(c Category) CategorySet { return s | bit(c) }

func (s CategorySet) Without(c Category) CategorySet { return s &^ bit(c) }

func (s CategorySet) Empty() bool { return s == 0 }

func (s CategorySet) HasWildcard() bool { return s.Has(All) }

// Categories returns the members in canonical order, wildcard first.
func (s CategorySet) Categories() []Category {
	var out []Category
	if s.HasWildcard() {
		out = append(out, All)
	}
	for _, c := range AllCategories() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Concrete expands the wildcard: it returns every concrete category when the
// wildcard is present, otherwise the concrete members.
func (s CategorySet) Concrete() []Category {
	if s.HasWildcard() {
		return AllCategories()
	}
	return s.Categories()
}

// Normalize returns s with the invariants restored: never empty, and the
// wildcard never mixed with concrete categories.
func (s CategorySet) Normalize() CategorySet {
	if s.Empty() || s.HasWildcard() {
		return WildcardSet()
	}
	return s
}

func (s CategorySet) Strings() []string {
	cats := s.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

func (s CategorySet) String() string {
	return strings.Join(s.Strings(), ", ")
}
