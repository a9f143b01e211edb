package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/manager"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

type mode int

const (
	modeOnboarding mode = iota
	modeHome
	modeFilter
	modeSettings
	modeBrowse
	modeHelp
)

type App struct {
	ctx     context.Context
	mgr     *manager.Manager
	changes <-chan struct{}
	log     *zap.Logger
	now     func() time.Time
	tick    time.Duration

	mode     mode
	prevMode mode
	width    int
	height   int

	// Sub-components
	spinner    spinner.Model
	filterBar  filterBar
	onboarding onboarding

	// State
	settingsCursor settingRow
	scope          levelScope
	browseCursor   int
	requesting     bool
	status         string
	err            error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Ctx     context.Context
	Manager *manager.Manager
	// Changes signals writes by other surfaces; nil disables live reload.
	Changes <-chan struct{}
	// Tick is how often a due refresh is checked; zero means one minute.
	Tick time.Duration
	Log  *zap.Logger
	Now  func() time.Time
}

func NewApp(opts RunOpts) *App {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Minute
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	p := opts.Manager.Preferences()
	startMode := modeHome
	if !p.OnboardingCompleted {
		startMode = modeOnboarding
	}

	return &App{
		ctx:        opts.Ctx,
		mgr:        opts.Manager,
		changes:    opts.Changes,
		log:        opts.Log,
		now:        opts.Now,
		tick:       opts.Tick,
		mode:       startMode,
		spinner:    sp,
		filterBar:  newFilterBar(),
		onboarding: newOnboarding(p),
		scope:      levelScope{category: corpus.AllCategories()[0]},
	}
}

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.mode != modeOnboarding {
		a.mgr.CheckAndRefresh(a.now())
	}
	cmds = append(cmds, tickCmd(a.tick), waitForChange(a.changes))
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tickMsg:
		if a.mode != modeOnboarding {
			if _, refreshed := a.mgr.CheckAndRefresh(time.Time(msg)); refreshed {
				a.browseCursor = 0
			}
		}
		return a, tickCmd(a.tick)

	case storeChangedMsg:
		p := a.mgr.Reload()
		if a.mode == modeOnboarding && p.OnboardingCompleted {
			a.mode = modeHome
		}
		return a, waitForChange(a.changes)

	case permissionMsg:
		a.requesting = false
		freq := msg.freq
		if !msg.granted {
			freq = prefs.NotifyOff
			a.status = "Notifications are not available on this system"
		}
		if msg.onboarding {
			return a, a.finishOnboarding(freq)
		}
		_, done := a.mgr.SetNotificationFrequency(a.ctx, freq)
		return a, awaitScheduled(done)

	case scheduledMsg:
		if msg.err != nil {
			a.log.Warn("scheduling notifications", zap.Error(msg.err))
			a.err = msg.err
		}
		return a, nil

	case spinner.TickMsg:
		if a.requesting {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) finishOnboarding(freq prefs.NotificationFrequency) tea.Cmd {
	_, done := a.mgr.CompleteOnboarding(a.ctx, a.onboarding.choices(freq))
	a.mode = modeHome
	return awaitScheduled(done)
}

// requestNotifications asks for permission before enabling a non-off
// frequency. Off never needs permission.
func (a *App) requestNotifications(freq prefs.NotificationFrequency, onboarding bool) tea.Cmd {
	if freq.Off() {
		if onboarding {
			return a.finishOnboarding(freq)
		}
		_, done := a.mgr.SetNotificationFrequency(a.ctx, freq)
		return awaitScheduled(done)
	}
	a.requesting = true
	return tea.Batch(
		awaitPermission(a.mgr.RequestNotificationPermission(a.ctx), freq, onboarding),
		a.spinner.Tick,
	)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}
	if a.requesting {
		return a, nil
	}

	// Mode-specific handling
	switch a.mode {
	case modeOnboarding:
		return a.handleOnboardingKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeSettings:
		return a.handleSettingsKey(msg)
	case modeBrowse:
		return a.handleBrowseKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = a.prevMode
		}
		return a, nil
	}

	// Home
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r", " ", "enter":
		a.mgr.Refresh(a.now())
		a.status = ""
		return a, nil
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "s":
		a.mode = modeSettings
		return a, nil
	case "b":
		a.mode = modeBrowse
		a.browseCursor = 0
		return a, nil
	case "c":
		a.mgr.SetTextColor(nextTextColor(a.mgr.TextColor()))
		return a, nil
	case "i":
		a.mgr.SetRefreshInterval(prefs.NextRefreshInterval(a.mgr.RefreshInterval()))
		return a, nil
	case "?":
		a.prevMode = modeHome
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func nextTextColor(c prefs.TextColor) prefs.TextColor {
	if c == prefs.Light {
		return prefs.Dark
	}
	return prefs.Light
}

func (a *App) handleOnboardingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := &a.onboarding
	switch msg.String() {
	case "q":
		if o.step == stepWelcome {
			return a, tea.Quit
		}
	case "esc":
		o.back()
	case "up", "k":
		o.up()
	case "down", "j":
		o.down()
	case " ":
		o.toggle()
	case "1", "2", "3":
		o.toggleLevel(corpus.Level(msg.String()[0] - '0'))
	case "enter":
		switch o.step {
		case stepInterval:
			o.draft.RefreshInterval = o.selectedInterval()
			o.next()
		case stepNotifications:
			return a, a.requestNotifications(o.selectedFrequency(), true)
		default:
			o.next()
		}
	}
	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeHome
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.left()
		return a, nil
	case "right", "l":
		a.filterBar.right()
		return a, nil
	case " ", "enter":
		_, done := a.mgr.ToggleCategory(a.ctx, a.filterBar.current())
		return a, awaitScheduled(done)
	}
	if c, ok := a.filterBar.byNumber(msg.String()); ok {
		_, done := a.mgr.ToggleCategory(a.ctx, c)
		return a, awaitScheduled(done)
	}
	return a, nil
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "q", "s":
		a.mode = modeHome
		return a, nil
	case "?":
		a.prevMode = modeSettings
		a.mode = modeHelp
		return a, nil
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
		return a, nil
	case "down", "j":
		if a.settingsCursor < numSettingRows-1 {
			a.settingsCursor++
		}
		return a, nil
	}

	switch a.settingsCursor {
	case rowInterval:
		if key == "enter" || key == " " || key == "right" || key == "l" {
			a.mgr.SetRefreshInterval(prefs.NextRefreshInterval(a.mgr.RefreshInterval()))
		}
	case rowColor:
		if key == "enter" || key == " " || key == "right" || key == "l" {
			a.mgr.SetTextColor(nextTextColor(a.mgr.TextColor()))
		}
	case rowNotifications:
		if key == "enter" || key == " " || key == "right" || key == "l" {
			next := prefs.NextNotificationFrequency(a.mgr.Preferences().NotificationFrequency)
			return a, a.requestNotifications(next, false)
		}
	case rowCategories:
		if key == "enter" || key == " " {
			a.mode = modeFilter
			a.filterBar.filterMode = true
		}
	case rowLevels:
		return a, a.handleLevelKey(key)
	}
	return a, nil
}

func (a *App) handleLevelKey(key string) tea.Cmd {
	cats := corpus.AllCategories()
	idx := 0
	for i, c := range cats {
		if c == a.scope.category {
			idx = i
		}
	}
	switch key {
	case "left", "h":
		a.scope.all = false
		a.scope.category = cats[(idx+len(cats)-1)%len(cats)]
	case "right", "l":
		a.scope.all = false
		a.scope.category = cats[(idx+1)%len(cats)]
	case "a":
		a.scope.all = !a.scope.all
	case "1", "2", "3":
		level := corpus.Level(key[0] - '0')
		if a.scope.all {
			_, done := a.mgr.ToggleLevelEverywhere(a.ctx, level)
			return awaitScheduled(done)
		}
		_, _, done := a.mgr.ToggleLevel(a.ctx, level, a.scope.category)
		return awaitScheduled(done)
	}
	return nil
}

func (a *App) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(a.mgr.FilteredFactlets())
	switch msg.String() {
	case "esc", "b", "q":
		a.mode = modeHome
	case "j", "down":
		if a.browseCursor < n-1 {
			a.browseCursor++
		}
	case "k", "up":
		if a.browseCursor > 0 {
			a.browseCursor--
		}
	case "?":
		a.prevMode = modeBrowse
		a.mode = modeHelp
	}
	return a, nil
}

func (a *App) busyLine() string {
	if !a.requesting {
		return ""
	}
	return a.spinner.View() + " checking notification permission..."
}

func (a *App) withBottomBar(content string, bar string) string {
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) statusLine(bar string) string {
	switch {
	case a.err != nil:
		return errStyle.Render(a.err.Error())
	case a.status != "":
		return errStyle.Render(a.status)
	}
	return bar
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  factlet")
	}

	p := a.mgr.Preferences()
	now := a.now()

	switch a.mode {
	case modeOnboarding:
		return a.withBottomBar(a.onboarding.render(a.width, a.height-1, a.busyLine()),
			a.statusLine(renderBottomBar("ctrl+c quit", a.width)))
	case modeSettings:
		return a.withBottomBar(renderSettings(p, a.settingsCursor, a.scope, a.busyLine(), a.width, a.height-1),
			a.statusLine(renderBottomBar("↑/↓ move  enter change  esc back  ? help", a.width)))
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), renderBottomBar("? close  q quit", a.width))
	case modeBrowse:
		return a.renderBrowse(p, now)
	}

	// Header
	headerLeft := headerStyle.Render("factlet")
	headerRight := headerDateStyle.Render(now.Format("Mon Jan 2 15:04") + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(p.Categories, a.width)

	contentHeight := a.height - 3
	if contentHeight < 3 {
		contentHeight = 3
	}
	card := renderHomeScreen(a.mgr.CurrentFactlet(), p.TextColor, a.width, contentHeight)

	status := renderStatusBar(p, untilTime(a.mgr.NextRefresh(now), now), a.width, a.mode == modeFilter)

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, card, a.statusLine(status))
}

func (a *App) renderBrowse(p prefs.Preferences, now time.Time) string {
	factlets := a.mgr.FilteredFactlets()
	title := headerStyle.Render(fmt.Sprintf("factlet · %d in selection", len(factlets)))
	list := renderList(factlets, a.browseCursor, a.height-3, a.width-2)
	bar := renderStatusBar(p, untilTime(a.mgr.NextRefresh(now), now), a.width, false)
	return a.withBottomBar(title+"\n\n"+list, a.statusLine(bar))
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("factlet")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Home") + "\n" +
		"  r, space      Show another factlet\n" +
		"  c             Switch text color\n" +
		"  i             Cycle refresh interval\n" +
		"  b             Browse the current selection\n" +
		"  s             Settings\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  f             Toggle category filter mode\n" +
		"  ←/→, h/l     Move between categories\n" +
		"  space/enter   Toggle category\n" +
		"  0-8           Toggle category by number (0 = All)\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("Settings") + "\n" +
		"  ↑/↓, j/k     Move between rows\n" +
		"  enter         Change the value\n" +
		"  1-3           Toggle a level on the Levels row\n" +
		"  a             Apply level toggles to every selected category\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(app.ctx))
	_, err := p.Run()
	return err
}
