package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

func TestToggleCategory(t *testing.T) {
	tests := []struct {
		name  string
		start corpus.CategorySet
		cat   corpus.Category
		want  corpus.CategorySet
	}{
		{"wildcard from wildcard", corpus.WildcardSet(), corpus.All, corpus.WildcardSet()},
		{"wildcard clears concrete", corpus.NewCategorySet(corpus.Science, corpus.History), corpus.All, corpus.WildcardSet()},
		{"concrete clears wildcard", corpus.WildcardSet(), corpus.Science, corpus.NewCategorySet(corpus.Science)},
		{"add concrete", corpus.NewCategorySet(corpus.Science), corpus.Nature, corpus.NewCategorySet(corpus.Science, corpus.Nature)},
		{"remove concrete", corpus.NewCategorySet(corpus.Science, corpus.Nature), corpus.Nature, corpus.NewCategorySet(corpus.Science)},
		{"remove last falls back", corpus.NewCategorySet(corpus.Science), corpus.Science, corpus.WildcardSet()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			p.Categories = tt.start
			got := ToggleCategory(p, tt.cat)
			assert.Equal(t, tt.want, got.Categories)
			assert.Equal(t, tt.start, p.Categories, "input must not change")
		})
	}
}

func TestToggleCategoryNeverEmpty(t *testing.T) {
	p := Defaults()
	for _, c := range corpus.AllCategories() {
		p = ToggleCategory(p, c)
		assert.False(t, p.Categories.Empty())
	}
	for _, c := range corpus.AllCategories() {
		p = ToggleCategory(p, c)
		assert.False(t, p.Categories.Empty())
	}
	assert.Equal(t, corpus.WildcardSet(), p.Categories)
}

func TestToggleLevel(t *testing.T) {
	p := Defaults()

	got, ok := ToggleLevel(p, corpus.Level2, corpus.Science)
	assert.True(t, ok)
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1, corpus.Level3), got.Levels.LevelsFor(corpus.Science))
	assert.Equal(t, corpus.AllLevelSet(), got.Levels.LevelsFor(corpus.History), "other categories untouched")
	assert.Equal(t, corpus.AllLevelSet(), p.Levels.LevelsFor(corpus.Science), "input must not change")

	got, _ = ToggleLevel(got, corpus.Level2, corpus.Science)
	assert.Equal(t, corpus.AllLevelSet(), got.Levels.LevelsFor(corpus.Science))
}

func TestToggleLevelSoleRemainingReinsertsLowest(t *testing.T) {
	p := Defaults()
	p.Levels[corpus.Nature] = corpus.NewLevelSet(corpus.Level3)

	got, ok := ToggleLevel(p, corpus.Level3, corpus.Nature)
	assert.True(t, ok)
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1), got.Levels.LevelsFor(corpus.Nature))

	p.Levels[corpus.Nature] = corpus.NewLevelSet(corpus.Level1)
	got, _ = ToggleLevel(p, corpus.Level1, corpus.Nature)
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1), got.Levels.LevelsFor(corpus.Nature))
}

func TestToggleLevelRejectsWildcard(t *testing.T) {
	p := Defaults()
	got, ok := ToggleLevel(p, corpus.Level1, corpus.All)
	assert.False(t, ok)
	assert.Equal(t, p.Levels, got.Levels)
}

func TestToggleLevelEverywhere(t *testing.T) {
	p := Defaults()
	p.Categories = corpus.NewCategorySet(corpus.Science, corpus.History)

	got := ToggleLevelEverywhere(p, corpus.Level3)
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1, corpus.Level2), got.Levels.LevelsFor(corpus.Science))
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1, corpus.Level2), got.Levels.LevelsFor(corpus.History))
	assert.Equal(t, corpus.AllLevelSet(), got.Levels.LevelsFor(corpus.Nature), "unselected categories untouched")
	assert.Equal(t, corpus.NewLevelSet(corpus.Level1, corpus.Level2), GlobalLevels(got))

	// Mixed state: History lacks level3, so the toggle adds it everywhere.
	mixed := got.Clone()
	mixed.Levels[corpus.Science] = corpus.AllLevelSet()
	back := ToggleLevelEverywhere(mixed, corpus.Level3)
	assert.Equal(t, corpus.AllLevelSet(), back.Levels.LevelsFor(corpus.Science))
	assert.Equal(t, corpus.AllLevelSet(), back.Levels.LevelsFor(corpus.History))
}

func TestToggleLevelEverywhereNeverEmpty(t *testing.T) {
	p := Defaults()
	p.Levels = UniformCategoryLevels(corpus.NewLevelSet(corpus.Level2))
	got := ToggleLevelEverywhere(p, corpus.Level2)
	for _, c := range corpus.AllCategories() {
		assert.Equal(t, corpus.NewLevelSet(corpus.Level1), got.Levels.LevelsFor(c), c)
	}
}

func TestWithNotificationFrequency(t *testing.T) {
	p := WithNotificationFrequency(Defaults(), NotifyDaily)
	assert.True(t, p.NotificationsEnabled)
	p = WithNotificationFrequency(p, NotifyOff)
	assert.False(t, p.NotificationsEnabled)
}

func TestCycles(t *testing.T) {
	assert.Equal(t, HalfDay, NextRefreshInterval(Hourly))
	assert.Equal(t, Hourly, NextRefreshInterval(Daily))
	assert.Equal(t, NotifyHourly, NextNotificationFrequency(NotifyOff))
	assert.Equal(t, NotifyOff, NextNotificationFrequency(NotifyDaily))
}

func TestParseEnums(t *testing.T) {
	r, err := ParseRefreshInterval("15 Minutes")
	assert.NoError(t, err)
	assert.Equal(t, Hourly, r, "retired options collapse to hourly")

	_, err = ParseRefreshInterval("15m")
	assert.Error(t, err)

	f, err := ParseNotificationFrequency("6h")
	assert.NoError(t, err)
	assert.Equal(t, NotifyEverySixHrs, f)
	assert.Equal(t, 6*60*60.0, f.Duration().Seconds())

	c, err := ParseTextColor("LIGHT")
	assert.NoError(t, err)
	assert.Equal(t, Light, c)
}
