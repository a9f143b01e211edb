package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the topical tag of a factlet.
type Category string

const (
	All        Category = "All"
	Science    Category = "Science"
	History    Category = "History"
	Nature     Category = "Nature"
	Language   Category = "Language"
	Culture    Category = "Culture"
	HumanBody  Category = "Human Body"
	Geography  Category = "Geography"
	Technology Category = "Technology"
)

// AllCategories returns the concrete categories in canonical order. The
// wildcard is not included.
func AllCategories() []Category {
	return []Category{Science, History, Nature, Language, Culture, HumanBody, Geography, Technology}
}

// IsWildcard reports whether c stands for every category.
func (c Category) IsWildcard() bool { return c == All }

// Valid reports whether c is the wildcard or a concrete category.
func (c Category) Valid() bool {
	return c == All || categoryIndex(c) < len(AllCategories())
}

func (c Category) String() string { return string(c) }

// Aliases maps short CLI names to categories.
var Aliases = map[string]Category{
	"all":     All,
	"any":     All,
	"science": Science,
	"sci":     Science,
	"history": History,
	"nature":  Nature,
	"lang":    Language,
	"culture": Culture,
	"body":    HumanBody,
	"human":   HumanBody,
	"geo":     Geography,
	"tech":    Technology,
}

// ParseCategory maps a CLI alias or display name to a Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if cat, ok := Aliases[s]; ok {
		return cat, nil
	}
	for _, cat := range append([]Category{All}, AllCategories()...) {
		if strings.EqualFold(string(cat), s) {
			return cat, nil
		}
		// "human-body", "human_body"
		if strings.EqualFold(strings.ReplaceAll(string(cat), " ", "-"), strings.ReplaceAll(s, "_", "-")) {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(valid, ", "))
}

func categoryIndex(cat Category) int {
	for i, c := range AllCategories() {
		if c == cat {
			return i
		}
	}
	return len(AllCategories())
}

// SortCategories orders cats canonically, wildcard first.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i] == All || cats[j] == All {
			return cats[i] == All && cats[j] != All
		}
		return categoryIndex(cats[i]) < categoryIndex(cats[j])
	})
}
