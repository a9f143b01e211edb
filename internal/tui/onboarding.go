package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/manager"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

type onboardStep int

const (
	stepWelcome onboardStep = iota
	stepCategories
	stepLevels
	stepInterval
	stepNotifications
)

// onboarding collects first-run choices on a draft; nothing is stored until
// the last step.
type onboarding struct {
	step   onboardStep
	draft  prefs.Preferences
	cursor int
	cats   filterBar
}

func newOnboarding(p prefs.Preferences) onboarding {
	return onboarding{draft: p.Clone(), cats: newFilterBar()}
}

func (o *onboarding) choices(freq prefs.NotificationFrequency) manager.Choices {
	return manager.Choices{
		Categories: o.draft.Categories,
		Levels:     o.draft.Levels.Clone(),
		Interval:   o.draft.RefreshInterval,
		Frequency:  freq,
	}
}

func (o *onboarding) levelCategories() []corpus.Category {
	return o.draft.Categories.Concrete()
}

func (o *onboarding) optionCount() int {
	switch o.step {
	case stepCategories:
		return len(o.cats.categories)
	case stepLevels:
		return len(o.levelCategories())
	case stepInterval:
		return len(prefs.RefreshIntervals())
	case stepNotifications:
		return len(prefs.NotificationFrequencies())
	}
	return 0
}

func (o *onboarding) up() {
	if o.cursor > 0 {
		o.cursor--
	}
}

func (o *onboarding) down() {
	if o.cursor < o.optionCount()-1 {
		o.cursor++
	}
}

// next moves forward and positions the cursor on the current draft value.
func (o *onboarding) next() {
	o.step++
	o.cursor = 0
	switch o.step {
	case stepInterval:
		for i, r := range prefs.RefreshIntervals() {
			if r == o.draft.RefreshInterval {
				o.cursor = i
			}
		}
	case stepNotifications:
		for i, f := range prefs.NotificationFrequencies() {
			if f == o.draft.NotificationFrequency {
				o.cursor = i
			}
		}
	}
}

func (o *onboarding) back() {
	if o.step > stepWelcome {
		o.step--
		o.cursor = 0
	}
}

func (o *onboarding) toggle() {
	if o.step == stepCategories {
		o.draft = prefs.ToggleCategory(o.draft, o.cats.categories[o.cursor])
	}
}

func (o *onboarding) toggleLevel(l corpus.Level) {
	cats := o.levelCategories()
	if o.step != stepLevels || o.cursor >= len(cats) {
		return
	}
	o.draft, _ = prefs.ToggleLevel(o.draft, l, cats[o.cursor])
}

func (o *onboarding) selectedInterval() prefs.RefreshInterval {
	return prefs.RefreshIntervals()[o.cursor]
}

func (o *onboarding) selectedFrequency() prefs.NotificationFrequency {
	return prefs.NotificationFrequencies()[o.cursor]
}

func (o *onboarding) render(width, height int, busy string) string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	dim := helpDimStyle

	var b strings.Builder
	option := func(i int, label string) {
		if i == o.cursor {
			b.WriteString(itemSelectedStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	switch o.step {
	case stepWelcome:
		b.WriteString(renderLogo() + "\n\n")
		b.WriteString("A short fact, every so often.\n\n")
		b.WriteString(dim.Render("enter to set things up"))
	case stepCategories:
		b.WriteString(title.Render("What are you curious about?") + "\n\n")
		sel := o.draft.Categories.Normalize()
		for i, c := range o.cats.categories {
			mark := "[ ]"
			if sel.Has(c) {
				mark = "[x]"
			}
			option(i, mark+" "+c.String())
		}
		b.WriteString("\n" + dim.Render("space toggle  enter next  esc back"))
	case stepLevels:
		b.WriteString(title.Render("How deep should it go?") + "\n\n")
		for i, c := range o.levelCategories() {
			option(i, fmt.Sprintf("%-12s %s", c.String(), renderLevelChecks(o.draft.Levels.LevelsFor(c), false)))
		}
		b.WriteString("\n" + dim.Render("1-3 toggle level  enter next  esc back"))
	case stepInterval:
		b.WriteString(title.Render("How often should it change?") + "\n\n")
		for i, r := range prefs.RefreshIntervals() {
			option(i, r.DisplayName())
		}
		b.WriteString("\n" + dim.Render("enter choose  esc back"))
	case stepNotifications:
		b.WriteString(title.Render("Want a nudge?") + "\n\n")
		for i, f := range prefs.NotificationFrequencies() {
			option(i, fmt.Sprintf("%-18s %s", f.DisplayName(), dim.Render(f.Description())))
		}
		b.WriteString("\n" + dim.Render("enter finish  esc back"))
	}
	if busy != "" {
		b.WriteString("\n\n" + busy)
	}

	card := helpCardStyle.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
