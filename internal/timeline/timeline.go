package timeline

import (
	"context"
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/selection"
)

// Entry is what a background surface shows at Date.
type Entry struct {
	Date        time.Time             `json:"date"`
	Factlet     corpus.Factlet        `json:"factlet"`
	TextColor   prefs.TextColor       `json:"text_color"`
	Interval    prefs.RefreshInterval `json:"refresh_interval"`
	SlotStart   time.Time             `json:"slot_start"`
	NextRefresh time.Time             `json:"next_refresh"`
	Due         bool                  `json:"due"`
}

// Provider computes entries straight from the shared store. It holds no
// state of its own, so any process can build one.
type Provider struct {
	kv     prefs.KV
	corpus *corpus.Corpus
	log    *zap.Logger
}

func New(kv prefs.KV, c *corpus.Corpus, log *zap.Logger) *Provider {
	if c == nil {
		c = corpus.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{kv: kv, corpus: c, log: log}
}

// Entry returns the factlet to show at the instant at. When the stored
// factlet is not due it is returned unchanged. Otherwise the replacement
// depends only on the refresh slot containing at and the stored factlet, so
// repeated calls for the same slot agree.
func (p *Provider) Entry(ctx context.Context, at time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	return p.entryAt(p.load(), at), nil
}

func (p *Provider) load() prefs.Preferences {
	pr, err := prefs.Load(p.kv)
	if err != nil {
		p.log.Debug("loading preferences for timeline", zap.Error(err))
	}
	return pr
}

// entryAt computes the entry for at as if pr were the stored state.
func (p *Provider) entryAt(pr prefs.Preferences, at time.Time) Entry {
	interval := pr.RefreshInterval.Duration()

	e := Entry{
		Date:      at,
		TextColor: pr.TextColor,
		Interval:  pr.RefreshInterval,
	}

	if pr.Current != nil && !selection.IsRefreshDue(pr.LastUpdate, interval, at) {
		e.Factlet = *pr.Current
		e.SlotStart = *pr.LastUpdate
		e.NextRefresh = selection.NextRefreshTime(*pr.LastUpdate, interval)
		return e
	}

	slot := selection.SlotStart(at, pr.LastUpdate, interval)
	current := pr.CurrentID()
	picker := selection.NewSeededPicker(p.corpus.All(), uint64(slot.Unix()), idSeed(current))

	e.Factlet = picker.Pick(selection.Filter(p.corpus.All(), pr.Categories, pr.Levels), current)
	e.SlotStart = slot
	e.NextRefresh = selection.NextRefreshTime(slot, interval)
	e.Due = true
	return e
}

// Commit persists the rotation Entry computed for at, for surfaces allowed
// to write. The slot start becomes the new last update so slot boundaries
// stay put.
func (p *Provider) Commit(ctx context.Context, at time.Time) (Entry, error) {
	e, err := p.Entry(ctx, at)
	if err != nil || !e.Due {
		return e, err
	}
	if err := prefs.SaveCurrent(p.kv, e.Factlet, e.SlotStart); err != nil {
		return e, err
	}
	p.log.Debug("committed timeline entry", zap.String("id", e.Factlet.ID), zap.Time("slot", e.SlotStart))
	return e, nil
}

// Timeline returns the entry at from followed by the entries at each of the
// next n-1 refresh boundaries. Each entry is computed as if the previous one
// had been committed, so neighbouring entries never repeat a factlet while
// the selection has an alternative. This is what Entry returns later when
// every slot is committed.
func (p *Provider) Timeline(ctx context.Context, from time.Time, n int) ([]Entry, error) {
	out := make([]Entry, 0, n)
	pr := p.load()
	at := from
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		e := p.entryAt(pr, at)
		out = append(out, e)
		if !e.NextRefresh.After(at) {
			break
		}
		shown, slot := e.Factlet, e.SlotStart
		pr.Current = &shown
		pr.LastUpdate = &slot
		at = e.NextRefresh
	}
	return out, nil
}

// Placeholder is shown when the store cannot be read at all.
func Placeholder(at time.Time) Entry {
	text := "Honey never spoils. Archaeologists have found 3,000-year-old honey in Egyptian tombs."
	return Entry{
		Date: at,
		Factlet: corpus.Factlet{
			ID:       corpus.FactletID(corpus.Science, text),
			Text:     text,
			Category: corpus.Science,
			Level:    corpus.Level1,
		},
		TextColor:   prefs.Dark,
		Interval:    prefs.Hourly,
		SlotStart:   at,
		NextRefresh: at.Add(prefs.Hourly.Duration()),
	}
}

func idSeed(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
