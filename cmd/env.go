package cmd

import (
	"fmt"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/desktop"
	"github.com/matheuskafuri/factlet/internal/manager"
	"github.com/matheuskafuri/factlet/internal/notify"
	"github.com/matheuskafuri/factlet/internal/selection"
	"github.com/matheuskafuri/factlet/internal/store"
)

// env is everything a command needs to act on the shared preferences.
type env struct {
	corpus   *corpus.Corpus
	store    *store.Store
	notifier *desktop.Notifier
	mgr      *manager.Manager
}

func loadCorpus() (*corpus.Corpus, error) {
	if path := cfg.CorpusPath(); path != "" {
		c, err := corpus.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading corpus: %w", err)
		}
		return c, nil
	}
	return corpus.Default(), nil
}

func openStore() (*store.Store, *corpus.Corpus, error) {
	c, err := loadCorpus()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	return s, c, nil
}

func openEnv() (*env, error) {
	s, c, err := openStore()
	if err != nil {
		return nil, err
	}

	n := desktop.New(cfg.Notifications.Command)
	sched := notify.NewScheduler(s, selection.NewPicker(c.All(), nil), cfg.NotificationCap(), logger)
	m, err := manager.Open(manager.Options{
		Store:      s,
		Corpus:     c,
		Scheduler:  sched,
		Permission: n,
		Log:        logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return &env{corpus: c, store: s, notifier: n, mgr: m}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}
