package prefs

import (
	"time"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

// CategoryLevels maps each concrete category to its selected levels. A
// category without an entry allows every level.
type CategoryLevels map[corpus.Category]corpus.LevelSet

// AllCategoryLevels selects every level of every concrete category.
func AllCategoryLevels() CategoryLevels {
	m := make(CategoryLevels, len(corpus.AllCategories()))
	for _, c := range corpus.AllCategories() {
		m[c] = corpus.AllLevelSet()
	}
	return m
}

// UniformCategoryLevels gives every concrete category the same levels.
func UniformCategoryLevels(levels corpus.LevelSet) CategoryLevels {
	m := make(CategoryLevels, len(corpus.AllCategories()))
	for _, c := range corpus.AllCategories() {
		m[c] = levels
	}
	return m
}

// LevelsFor implements selection.LevelSelector.
func (m CategoryLevels) LevelsFor(c corpus.Category) corpus.LevelSet {
	s, ok := m[c]
	if !ok {
		return corpus.AllLevelSet()
	}
	if s.Empty() {
		return corpus.NewLevelSet(corpus.LowestLevel())
	}
	return s
}

func (m CategoryLevels) Clone() CategoryLevels {
	out := make(CategoryLevels, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Preferences is the persisted user state shared by every surface.
type Preferences struct {
	Current               *corpus.Factlet
	LastUpdate            *time.Time
	RefreshInterval       RefreshInterval
	TextColor             TextColor
	Categories            corpus.CategorySet
	Levels                CategoryLevels
	NotificationFrequency NotificationFrequency
	NotificationsEnabled  bool
	OnboardingCompleted   bool
}

// Defaults is the state of a fresh install.
func Defaults() Preferences {
	return Preferences{
		RefreshInterval:       Hourly,
		TextColor:             Dark,
		Categories:            corpus.WildcardSet(),
		Levels:                AllCategoryLevels(),
		NotificationFrequency: NotifyOff,
	}
}

// Clone returns a copy that shares nothing mutable with p.
func (p Preferences) Clone() Preferences {
	out := p
	if p.Current != nil {
		f := *p.Current
		out.Current = &f
	}
	if p.LastUpdate != nil {
		t := *p.LastUpdate
		out.LastUpdate = &t
	}
	out.Levels = p.Levels.Clone()
	return out
}

// Normalize restores the selection invariants: a non-empty, wildcard-exclusive
// category set and no empty level set.
func (p Preferences) Normalize() Preferences {
	out := p.Clone()
	out.Categories = p.Categories.Normalize()
	if out.Levels == nil {
		out.Levels = AllCategoryLevels()
	}
	for c, s := range out.Levels {
		if !c.Valid() || c == corpus.All {
			delete(out.Levels, c)
			continue
		}
		if s.Empty() {
			out.Levels[c] = corpus.NewLevelSet(corpus.LowestLevel())
		}
	}
	if _, err := ParseRefreshInterval(string(out.RefreshInterval)); err != nil {
		out.RefreshInterval = Hourly
	}
	if out.TextColor != Light {
		out.TextColor = Dark
	}
	if _, err := ParseNotificationFrequency(string(out.NotificationFrequency)); err != nil {
		out.NotificationFrequency = NotifyOff
	}
	return out
}

// CurrentID is the id of the displayed factlet, or "" if none.
func (p Preferences) CurrentID() string {
	if p.Current == nil {
		return ""
	}
	return p.Current.ID
}
