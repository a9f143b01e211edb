package manager

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

// apply stores p, persists its settings and tells listeners. The current
// factlet is left to Refresh so a rotation made by another surface survives.
func (m *Manager) apply(p prefs.Preferences) prefs.Preferences {
	p = p.Normalize()
	m.mu.Lock()
	m.prefs = p
	m.mu.Unlock()

	if err := prefs.SaveSettings(m.store, p); err != nil {
		m.log.Warn("saving preferences", zap.Error(err))
	}
	m.signal(p)
	return p.Clone()
}

// selectionChanged reschedules pending notifications so they follow the new
// filter. The returned channel is nil when notifications are off.
func (m *Manager) selectionChanged(ctx context.Context, p prefs.Preferences) <-chan error {
	if !p.NotificationsEnabled || p.NotificationFrequency.Off() {
		return nil
	}
	return m.sched.ScheduleAsync(ctx, p.NotificationFrequency, filtered(m.corpus, p), m.now())
}

func (m *Manager) ToggleCategory(ctx context.Context, cat corpus.Category) (prefs.Preferences, <-chan error) {
	p := m.apply(prefs.ToggleCategory(m.snapshot(), cat))
	return p, m.selectionChanged(ctx, p)
}

// ToggleLevel changes one category's levels. It reports false for the
// wildcard category, which has no level set of its own.
func (m *Manager) ToggleLevel(ctx context.Context, level corpus.Level, cat corpus.Category) (prefs.Preferences, bool, <-chan error) {
	next, ok := prefs.ToggleLevel(m.snapshot(), level, cat)
	if !ok {
		return m.snapshot(), false, nil
	}
	p := m.apply(next)
	return p, true, m.selectionChanged(ctx, p)
}

// ToggleLevelEverywhere toggles level across every selected category.
func (m *Manager) ToggleLevelEverywhere(ctx context.Context, level corpus.Level) (prefs.Preferences, <-chan error) {
	p := m.apply(prefs.ToggleLevelEverywhere(m.snapshot(), level))
	return p, m.selectionChanged(ctx, p)
}

func (m *Manager) SetRefreshInterval(r prefs.RefreshInterval) prefs.Preferences {
	return m.apply(prefs.WithRefreshInterval(m.snapshot(), r))
}

func (m *Manager) SetTextColor(c prefs.TextColor) prefs.Preferences {
	return m.apply(prefs.WithTextColor(m.snapshot(), c))
}

// SetNotificationFrequency stores f. Off cancels everything pending; any
// other value replaces the pending batch. The channel receives the outcome
// of that queue update.
func (m *Manager) SetNotificationFrequency(ctx context.Context, f prefs.NotificationFrequency) (prefs.Preferences, <-chan error) {
	p := m.apply(prefs.WithNotificationFrequency(m.snapshot(), f))
	if f.Off() {
		done := make(chan error, 1)
		done <- m.sched.Cancel(ctx)
		close(done)
		return p, done
	}
	return p, m.sched.ScheduleAsync(ctx, f, filtered(m.corpus, p), m.now())
}

// Replenish queues the next batch when notifications are on. The notification
// dispatcher calls it once the pending window runs dry.
func (m *Manager) Replenish(ctx context.Context, now time.Time) error {
	p := m.Reload()
	if !p.NotificationsEnabled || p.NotificationFrequency.Off() {
		return nil
	}
	_, err := m.sched.Schedule(ctx, p.NotificationFrequency, filtered(m.corpus, p), now)
	return err
}

// CancelNotifications clears the pending queue without changing the stored
// frequency.
func (m *Manager) CancelNotifications(ctx context.Context) error {
	return m.sched.Cancel(ctx)
}

// Choices are the answers collected by onboarding.
type Choices struct {
	Categories corpus.CategorySet
	Levels     prefs.CategoryLevels
	Interval   prefs.RefreshInterval
	Frequency  prefs.NotificationFrequency
}

// CompleteOnboarding stores every choice at once, marks onboarding done and
// rotates to a factlet matching the new selection.
func (m *Manager) CompleteOnboarding(ctx context.Context, c Choices) (prefs.Preferences, <-chan error) {
	p := m.snapshot()
	p.Categories = c.Categories
	if c.Levels != nil {
		p.Levels = c.Levels.Clone()
	}
	p.RefreshInterval = c.Interval
	p = prefs.WithNotificationFrequency(p, c.Frequency)
	p.OnboardingCompleted = true
	p = m.apply(p)

	m.Refresh(m.now())

	if c.Frequency.Off() {
		return p, nil
	}
	return p, m.sched.ScheduleAsync(ctx, c.Frequency, filtered(m.corpus, p), m.now())
}

// RequestNotificationPermission resolves to false when no notifier is wired.
func (m *Manager) RequestNotificationPermission(ctx context.Context) <-chan bool {
	if m.perm == nil {
		out := make(chan bool, 1)
		out <- false
		close(out)
		return out
	}
	return m.perm.RequestPermission(ctx)
}

// OpenNotification handles the user acting on a delivered notification. The
// first open of a payload refreshes the factlet; later opens are no-ops.
func (m *Manager) OpenNotification(id string, now time.Time) (corpus.Factlet, bool, error) {
	if _, ok, err := m.store.Notification(id); err != nil {
		return corpus.Factlet{}, false, err
	} else if !ok {
		return corpus.Factlet{}, false, fmt.Errorf("notification %s not found", id)
	}

	first, err := m.store.MarkOpened(id, now)
	if err != nil {
		return corpus.Factlet{}, false, err
	}
	if !first {
		return m.CurrentFactlet(), false, nil
	}
	return m.Refresh(now), true, nil
}
