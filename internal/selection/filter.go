package selection

import "github.com/matheuskafuri/factlet/internal/corpus"

// LevelSelector resolves the allowed levels for a category. A flat
// corpus.LevelSet applies the same levels everywhere; a per-category map
// resolves each category on its own.
type LevelSelector interface {
	LevelsFor(cat corpus.Category) corpus.LevelSet
}

// Filter returns the factlets whose category is selected and whose level is
// allowed for that category, in corpus order. An empty result is valid;
// callers fall back through Picker.
func Filter(all []corpus.Factlet, categories corpus.CategorySet, levels LevelSelector) []corpus.Factlet {
	allowed := make(map[corpus.Category]corpus.LevelSet)
	for _, cat := range categories.Concrete() {
		allowed[cat] = levels.LevelsFor(cat)
	}

	var out []corpus.Factlet
	for _, f := range all {
		ls, ok := allowed[f.Category]
		if !ok || !ls.Has(f.Level) {
			continue
		}
		out = append(out, f)
	}
	return out
}
