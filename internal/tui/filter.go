package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

// filterBar renders the category selection as tabs. Index 0 is the "All"
// wildcard, followed by the concrete categories.
type filterBar struct {
	categories   []corpus.Category
	filterMode   bool
	filterCursor int
}

func newFilterBar() filterBar {
	return filterBar{categories: append([]corpus.Category{corpus.All}, corpus.AllCategories()...)}
}

func (f *filterBar) left() {
	if f.filterCursor > 0 {
		f.filterCursor--
	}
}

func (f *filterBar) right() {
	if f.filterCursor < len(f.categories)-1 {
		f.filterCursor++
	}
}

func (f *filterBar) current() corpus.Category {
	return f.categories[f.filterCursor]
}

// byNumber maps "0" to All and "1".."8" to the concrete categories.
func (f *filterBar) byNumber(key string) (corpus.Category, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return "", false
	}
	idx := int(key[0] - '0')
	if idx >= len(f.categories) {
		return "", false
	}
	return f.categories[idx], true
}

func activeLabel(selected corpus.CategorySet) string {
	if selected.Normalize().HasWildcard() {
		return "All"
	}
	return selected.String()
}

func (f *filterBar) render(selected corpus.CategorySet, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	selected = selected.Normalize()

	var parts []string
	for i, c := range f.categories {
		style := tabInactiveStyle
		if selected.Has(c) {
			style = tabActiveStyle
		}
		label := c.String()
		if f.filterMode && i == f.filterCursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
