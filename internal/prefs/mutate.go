package prefs

import "github.com/matheuskafuri/factlet/internal/corpus"

// ToggleCategory selects or deselects cat. Selecting the wildcard clears the
// concrete categories; selecting a concrete category clears the wildcard;
// deselecting the last concrete category falls back to the wildcard.
func ToggleCategory(p Preferences, cat corpus.Category) Preferences {
	out := p.Clone()
	if !cat.Valid() {
		out.Categories = p.Categories.Normalize()
		return out
	}
	if cat == corpus.All {
		out.Categories = corpus.WildcardSet()
		return out
	}

	cats := p.Categories.Without(corpus.All)
	if cats.Has(cat) {
		cats = cats.Without(cat)
		if cats.Empty() {
			cats = corpus.WildcardSet()
		}
	} else {
		cats = cats.With(cat)
	}
	out.Categories = cats
	return out
}

func toggleInSet(s corpus.LevelSet, level corpus.Level) corpus.LevelSet {
	if s.Has(level) {
		s = s.Without(level)
		if s.Empty() {
			s = corpus.NewLevelSet(corpus.LowestLevel())
		}
		return s
	}
	return s.With(level)
}

// ToggleLevel flips level for one concrete category. The wildcard has no
// level set of its own, so toggling it is rejected and ok is false. Removing
// the last level of a category reinserts the lowest tier.
func ToggleLevel(p Preferences, level corpus.Level, cat corpus.Category) (out Preferences, ok bool) {
	out = p.Clone()
	if cat == corpus.All || !cat.Valid() || !level.Valid() {
		return out, false
	}
	if out.Levels == nil {
		out.Levels = AllCategoryLevels()
	}
	out.Levels[cat] = toggleInSet(out.Levels.LevelsFor(cat), level)
	return out, true
}

// ToggleLevelEverywhere applies one toggle to every selected concrete
// category (every category when the wildcard is selected), for call sites
// that still think of levels as a single global set. If all of them already
// have level it is removed from each; otherwise it is added to each.
func ToggleLevelEverywhere(p Preferences, level corpus.Level) Preferences {
	out := p.Clone()
	if !level.Valid() {
		return out
	}
	if out.Levels == nil {
		out.Levels = AllCategoryLevels()
	}
	targets := p.Categories.Normalize().Concrete()

	allHave := true
	for _, c := range targets {
		if !out.Levels.LevelsFor(c).Has(level) {
			allHave = false
			break
		}
	}
	for _, c := range targets {
		s := out.Levels.LevelsFor(c)
		if allHave {
			out.Levels[c] = toggleInSet(s, level)
		} else {
			out.Levels[c] = s.With(level)
		}
	}
	return out
}

// GlobalLevels is the union of levels over the selected categories, as a
// flat view for legacy call sites.
func GlobalLevels(p Preferences) corpus.LevelSet {
	var s corpus.LevelSet
	for _, c := range p.Categories.Normalize().Concrete() {
		s |= p.Levels.LevelsFor(c)
	}
	return s
}

func WithRefreshInterval(p Preferences, r RefreshInterval) Preferences {
	out := p.Clone()
	out.RefreshInterval = r
	return out
}

func WithTextColor(p Preferences, c TextColor) Preferences {
	out := p.Clone()
	out.TextColor = c
	return out
}

// WithNotificationFrequency also sets the enabled flag: off disables.
func WithNotificationFrequency(p Preferences, f NotificationFrequency) Preferences {
	out := p.Clone()
	out.NotificationFrequency = f
	out.NotificationsEnabled = !f.Off()
	return out
}

// NextRefreshInterval cycles through the supported intervals.
func NextRefreshInterval(r RefreshInterval) RefreshInterval {
	all := RefreshIntervals()
	for i, v := range all {
		if v == r {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// NextNotificationFrequency cycles through the supported frequencies.
func NextNotificationFrequency(f NotificationFrequency) NotificationFrequency {
	all := NotificationFrequencies()
	for i, v := range all {
		if v == f {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
