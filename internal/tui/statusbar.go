package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/prefs"
)

func renderStatusBar(p prefs.Preferences, next string, width int, filtering bool) string {
	accent := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %s · next in %s", p.RefreshInterval.DisplayName(), next)
	if label := activeLabel(p.Categories); label != "All" {
		left += " · " + label
	}
	if p.NotificationsEnabled {
		left += " · " + accent.Render("🔔 "+p.NotificationFrequency.DisplayName())
	}

	right := " r refresh  f filter  s settings  ? help  q quit "
	if filtering {
		right = " ←/→ move  space toggle  0-8 jump  esc done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
