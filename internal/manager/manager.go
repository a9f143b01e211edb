package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/notify"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/selection"
	"github.com/matheuskafuri/factlet/internal/store"
)

// Backend is the shared store a Manager reads and writes. *store.Store
// satisfies it.
type Backend interface {
	prefs.KV
	notify.Queue
	Notification(id string) (store.Notification, bool, error)
	MarkOpened(id string, at time.Time) (bool, error)
}

// Permissioner answers whether notifications may be posted.
type Permissioner interface {
	RequestPermission(ctx context.Context) <-chan bool
}

type Options struct {
	Store  Backend
	Corpus *corpus.Corpus
	// Picker drives factlet rotation; nil uses a time-seeded picker.
	Picker *selection.Picker
	// Scheduler queues notifications; nil builds one over Store with the
	// default cap.
	Scheduler  *notify.Scheduler
	Permission Permissioner
	Log        *zap.Logger
	Now        func() time.Time
}

// Manager is the single writer of preferences for one surface. Every
// mutator applies a pure transition, persists it best effort and notifies
// reload listeners.
type Manager struct {
	store  Backend
	corpus *corpus.Corpus
	picker *selection.Picker
	sched  *notify.Scheduler
	perm   Permissioner
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	prefs     prefs.Preferences
	listeners []func(prefs.Preferences)
}

// Open loads the stored preferences. When no usable current factlet is
// stored, one is picked and persisted.
func Open(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("manager: store is required")
	}
	if opts.Corpus == nil {
		opts.Corpus = corpus.Default()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Picker == nil {
		opts.Picker = selection.NewPicker(opts.Corpus.All(), nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = notify.NewScheduler(opts.Store, selection.NewPicker(opts.Corpus.All(), nil), notify.DefaultCap, opts.Log)
	}

	m := &Manager{
		store:  opts.Store,
		corpus: opts.Corpus,
		picker: opts.Picker,
		sched:  opts.Scheduler,
		perm:   opts.Permission,
		log:    opts.Log,
		now:    opts.Now,
	}
	m.prefs = m.load()

	if cur := m.prefs.Current; cur == nil {
		m.Refresh(m.now())
	} else if _, ok := m.corpus.ByID(cur.ID); !ok {
		m.log.Info("stored factlet not in corpus, picking another", zap.String("id", cur.ID))
		m.Refresh(m.now())
	}
	return m, nil
}

func (m *Manager) load() prefs.Preferences {
	p, err := prefs.Load(m.store)
	if err != nil {
		m.log.Warn("migrating preferences", zap.Error(err))
	}
	return p
}

// OnReload registers fn to run after every change, local or reloaded.
func (m *Manager) OnReload(fn func(prefs.Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) signal(p prefs.Preferences) {
	m.mu.Lock()
	listeners := append([]func(prefs.Preferences){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(p.Clone())
	}
}

// Reload re-reads the store after another surface wrote to it.
func (m *Manager) Reload() prefs.Preferences {
	p := m.load()
	m.mu.Lock()
	m.prefs = p
	m.mu.Unlock()
	m.signal(p)
	return p.Clone()
}

func (m *Manager) snapshot() prefs.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs.Clone()
}

// Preferences returns a copy of the in-memory state.
func (m *Manager) Preferences() prefs.Preferences { return m.snapshot() }

func (m *Manager) Corpus() *corpus.Corpus { return m.corpus }

func (m *Manager) CurrentFactlet() corpus.Factlet {
	p := m.snapshot()
	if p.Current == nil {
		return m.picker.Random(nil)
	}
	return *p.Current
}

func (m *Manager) RefreshInterval() prefs.RefreshInterval { return m.snapshot().RefreshInterval }

func (m *Manager) TextColor() prefs.TextColor { return m.snapshot().TextColor }

// FilteredFactlets is the active selection; rotation and notifications both
// draw from it.
func (m *Manager) FilteredFactlets() []corpus.Factlet {
	return filtered(m.corpus, m.snapshot())
}

func filtered(c *corpus.Corpus, p prefs.Preferences) []corpus.Factlet {
	return selection.Filter(c.All(), p.Categories, p.Levels)
}

// Refresh rotates to a new factlet from the active selection, avoiding the
// current one when possible.
func (m *Manager) Refresh(now time.Time) corpus.Factlet {
	m.mu.Lock()
	f := m.picker.Pick(filtered(m.corpus, m.prefs), m.prefs.CurrentID())
	at := now
	m.prefs.Current = &f
	m.prefs.LastUpdate = &at
	p := m.prefs.Clone()
	m.mu.Unlock()

	if err := prefs.SaveCurrent(m.store, f, now); err != nil {
		m.log.Warn("saving current factlet", zap.Error(err))
	}
	m.log.Debug("refreshed factlet", zap.String("id", f.ID), zap.String("category", f.Category.String()))
	m.signal(p)
	return f
}

// IsDue reports whether the refresh interval has elapsed at now.
func (m *Manager) IsDue(now time.Time) bool {
	p := m.snapshot()
	return selection.IsRefreshDue(p.LastUpdate, p.RefreshInterval.Duration(), now)
}

// NextRefresh is when the current factlet becomes due; now if it already is.
func (m *Manager) NextRefresh(now time.Time) time.Time {
	p := m.snapshot()
	if p.LastUpdate == nil {
		return now
	}
	return selection.NextRefreshTime(*p.LastUpdate, p.RefreshInterval.Duration())
}

// CheckAndRefresh refreshes only when due.
func (m *Manager) CheckAndRefresh(now time.Time) (corpus.Factlet, bool) {
	if !m.IsDue(now) {
		return m.CurrentFactlet(), false
	}
	return m.Refresh(now), true
}
