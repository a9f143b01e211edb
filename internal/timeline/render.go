package timeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/prefs"
)

// Family is a widget size.
type Family string

const (
	Small  Family = "small"
	Medium Family = "medium"
	Large  Family = "large"
	Inline Family = "inline"
)

func Families() []Family { return []Family{Small, Medium, Large, Inline} }

func ParseFamily(s string) (Family, error) {
	for _, f := range Families() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown widget family %q (valid: small, medium, large, inline)", s)
}

// Small and medium widgets cut the text after a fixed number of lines.
var lineLimit = map[Family]int{Small: 6, Medium: 4}

func palette(c prefs.TextColor) (primary, muted lipgloss.Color) {
	if c == prefs.Light {
		return lipgloss.Color("#FFFFFF"), lipgloss.Color("#9B9B9B")
	}
	return lipgloss.Color("#000000"), lipgloss.Color("#626262")
}

// Render draws e in the given family, width columns wide.
func Render(e Entry, f Family, width int) string {
	primary, muted := palette(e.TextColor)
	category := strings.ToUpper(e.Factlet.Category.String())

	if f == Inline {
		line := fmt.Sprintf("%s · %s", category, e.Factlet.Text)
		return lipgloss.NewStyle().Foreground(primary).Render(truncate(line, width))
	}

	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	header := lipgloss.NewStyle().Foreground(muted).Bold(true).Render(spaced(category))

	lines := Wrap(e.Factlet.Text, inner)
	if limit, ok := lineLimit[f]; ok && len(lines) > limit {
		lines = lines[:limit]
		lines[limit-1] = truncate(lines[limit-1]+"…", inner)
	}
	body := lipgloss.NewStyle().Foreground(primary).Render(strings.Join(lines, "\n"))

	switch f {
	case Large:
		rule := lipgloss.NewStyle().Foreground(muted).Render(strings.Repeat("─", 3))
		brand := lipgloss.NewStyle().Foreground(muted).Italic(true).Render("Factlet")
		content := lipgloss.JoinVertical(lipgloss.Center, header, "", body, "", rule, "", brand)
		return lipgloss.NewStyle().Width(width).Padding(1, 2).Align(lipgloss.Center).Render(content)
	case Medium:
		content := lipgloss.JoinVertical(lipgloss.Left, header, body)
		return lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(muted).
			PaddingLeft(1).
			Render(content)
	default:
		content := lipgloss.JoinVertical(lipgloss.Left, header, body)
		return lipgloss.NewStyle().Padding(0, 1).Render(content)
	}
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// Wrap breaks text into lines of at most width runes, splitting on spaces.
func Wrap(text string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
