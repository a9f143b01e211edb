package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/timeline"
)

var asciiLogo = []string{
	`┏━╸┏━┓┏━╸╺┳╸╻  ┏━╸╺┳╸`,
	`┣╸ ┣━┫┃   ┃ ┃  ┣╸  ┃ `,
	`╹  ╹ ╹┗━╸ ╹ ┗━╸┗━╸ ╹ `,
}

func renderLogo() string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	var lines []string
	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	return strings.Join(lines, "\n")
}

// renderCard draws the current factlet the way the large widget does:
// spaced category, wrapped text, a short rule.
func renderCard(f corpus.Factlet, color prefs.TextColor, width int) string {
	cardWidth := width - 8
	if cardWidth > 72 {
		cardWidth = 72
	}
	if cardWidth < 20 {
		cardWidth = 20
	}
	inner := cardWidth - 8

	category := cardCategoryStyle.Render(strings.Join(strings.Split(strings.ToUpper(f.Category.String()), ""), " "))
	level := cardLevelStyle.Render(f.Level.DisplayName())
	text := factletTextStyle(color).Render(strings.Join(timeline.Wrap(f.Text, inner), "\n"))
	rule := helpDimStyle.Render("───")

	content := lipgloss.JoinVertical(lipgloss.Center, category, level, "", text, "", rule)
	return cardStyle.Width(cardWidth).Align(lipgloss.Center).Render(content)
}

func renderHomeScreen(f corpus.Factlet, color prefs.TextColor, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center, renderLogo(), "", "", renderCard(f, color, width))
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
