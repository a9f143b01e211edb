package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

type settingRow int

const (
	rowInterval settingRow = iota
	rowColor
	rowNotifications
	rowCategories
	rowLevels
	numSettingRows
)

var settingLabels = map[settingRow]string{
	rowInterval:      "Refresh",
	rowColor:         "Text color",
	rowNotifications: "Notifications",
	rowCategories:    "Categories",
	rowLevels:        "Levels",
}

// levelScope is the target of level toggles in settings: one category, or
// every selected category at once.
type levelScope struct {
	category corpus.Category
	all      bool
}

func (s levelScope) label() string {
	if s.all {
		return "every selected category"
	}
	return s.category.String()
}

func (s levelScope) levels(p prefs.Preferences) corpus.LevelSet {
	if s.all {
		return prefs.GlobalLevels(p)
	}
	return p.Levels.LevelsFor(s.category)
}

func renderLevelChecks(set corpus.LevelSet, withKeys bool) string {
	var parts []string
	for i, l := range corpus.AllLevels() {
		mark := "[ ]"
		if set.Has(l) {
			mark = "[x]"
		}
		label := mark + " " + l.DisplayName()
		if withKeys {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func settingValue(row settingRow, p prefs.Preferences, scope levelScope) string {
	switch row {
	case rowInterval:
		return p.RefreshInterval.DisplayName()
	case rowColor:
		return p.TextColor.DisplayName()
	case rowNotifications:
		return p.NotificationFrequency.DisplayName()
	case rowCategories:
		return activeLabel(p.Categories)
	case rowLevels:
		return scope.label() + "  " + renderLevelChecks(scope.levels(p), true)
	}
	return ""
}

func renderSettings(p prefs.Preferences, cursor settingRow, scope levelScope, busy string, width, height int) string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("Settings")

	var lines []string
	lines = append(lines, title, "")
	for row := settingRow(0); row < numSettingRows; row++ {
		marker := "  "
		if row == cursor {
			marker = itemSelectedStyle.Render("> ")
		}
		lines = append(lines, marker+settingLabelStyle.Render(settingLabels[row])+settingValueStyle.Render(settingValue(row, p, scope)))
	}

	lines = append(lines, "")
	switch cursor {
	case rowNotifications:
		lines = append(lines, helpDimStyle.Render(p.NotificationFrequency.Description()))
	case rowLevels:
		lines = append(lines, helpDimStyle.Render("←/→ category  a all selected  1-3 toggle level"))
	case rowCategories:
		lines = append(lines, helpDimStyle.Render("enter opens the category filter"))
	}
	if busy != "" {
		lines = append(lines, "", busy)
	}

	card := helpCardStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
