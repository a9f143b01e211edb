package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/factlet/internal/prefs"
)

type tickMsg time.Time

type storeChangedMsg struct{}

type permissionMsg struct {
	granted    bool
	freq       prefs.NotificationFrequency
	onboarding bool
}

type scheduledMsg struct {
	err error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// waitForChange blocks on the store watcher; it is re-armed after every
// signal.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func awaitScheduled(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg { return scheduledMsg{err: <-ch} }
}

func awaitPermission(ch <-chan bool, freq prefs.NotificationFrequency, onboarding bool) tea.Cmd {
	return func() tea.Msg {
		return permissionMsg{granted: <-ch, freq: freq, onboarding: onboarding}
	}
}
