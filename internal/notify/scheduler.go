package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/selection"
	"github.com/matheuskafuri/factlet/internal/store"
)

// DefaultCap bounds how many payloads one Schedule call queues.
const DefaultCap = 60

// Payload is one scheduled notification.
type Payload struct {
	ID        string
	FactletID string
	Title     string
	Body      string
	FireAt    time.Time
}

func (p Payload) record() store.Notification {
	return store.Notification{
		ID:        p.ID,
		FactletID: p.FactletID,
		Title:     p.Title,
		Body:      p.Body,
		FireAt:    p.FireAt,
	}
}

// PayloadFor builds the notification shown for f.
func PayloadFor(f corpus.Factlet, at time.Time) Payload {
	return Payload{
		ID:        uuid.NewString(),
		FactletID: f.ID,
		Title:     f.Category.String(),
		Body:      f.Text,
		FireAt:    at,
	}
}

// Queue is the persistent side of the scheduler. *store.Store satisfies it.
type Queue interface {
	ReplacePending(ns []store.Notification) error
	ClearPending() error
	Pending() ([]store.Notification, error)
	DuePending(now time.Time) ([]store.Notification, error)
	MarkDelivered(id string, at time.Time) error
	PruneDelivered(before time.Time) (int64, error)
}

// Scheduler turns a notification frequency and a filtered factlet set into a
// batch of pending payloads. Queue updates apply in call order: a Schedule or
// Cancel supersedes every earlier call, even one still running on another
// goroutine.
type Scheduler struct {
	mu sync.Mutex
	// gen is bumped when a queue update is requested; a schedule only writes
	// while its generation is still the latest.
	gen    uint64
	queue  Queue
	picker *selection.Picker
	cap    int
	log    *zap.Logger
}

func NewScheduler(q Queue, picker *selection.Picker, limit int, log *zap.Logger) *Scheduler {
	if limit <= 0 {
		limit = DefaultCap
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{queue: q, picker: picker, cap: limit, log: log}
}

// Cap is the maximum batch size.
func (s *Scheduler) Cap() int { return s.cap }

// Plan draws the batch Schedule would queue without touching the queue. The
// k-th payload fires at now + k*d; each is an independent draw, so repeats
// are possible.
func (s *Scheduler) Plan(freq prefs.NotificationFrequency, filtered []corpus.Factlet, now time.Time) []Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan(freq, filtered, now)
}

func (s *Scheduler) plan(freq prefs.NotificationFrequency, filtered []corpus.Factlet, now time.Time) []Payload {
	d := freq.Duration()
	if d <= 0 {
		return nil
	}
	out := make([]Payload, 0, s.cap)
	for k := 1; k <= s.cap; k++ {
		f := s.picker.Random(filtered)
		if f.ID == "" {
			break
		}
		out = append(out, PayloadFor(f, now.Add(time.Duration(k)*d)))
	}
	return out
}

// claim reserves the next generation for a queue update.
func (s *Scheduler) claim() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Schedule replaces every pending payload with a fresh batch. An off
// frequency only clears.
func (s *Scheduler) Schedule(ctx context.Context, freq prefs.NotificationFrequency, filtered []corpus.Factlet, now time.Time) ([]Payload, error) {
	if freq.Off() {
		return nil, s.Cancel(ctx)
	}
	return s.schedule(ctx, s.claim(), freq, filtered, now)
}

// schedule writes a batch for generation gen. A superseded generation writes
// nothing and is not an error.
func (s *Scheduler) schedule(ctx context.Context, gen uint64, freq prefs.NotificationFrequency, filtered []corpus.Factlet, now time.Time) ([]Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug("notification schedule superseded", zap.String("frequency", string(freq)))
		return nil, nil
	}

	batch := s.plan(freq, filtered, now)
	records := make([]store.Notification, len(batch))
	for i, p := range batch {
		records[i] = p.record()
	}
	if err := s.queue.ReplacePending(records); err != nil {
		return nil, fmt.Errorf("scheduling notifications: %w", err)
	}

	s.log.Debug("scheduled notifications",
		zap.String("frequency", string(freq)),
		zap.Int("count", len(batch)),
		zap.Int("candidates", len(filtered)),
	)
	return batch, nil
}

// ScheduleAsync runs Schedule on its own goroutine. Its place in the call
// order is taken before returning, so a later Cancel always wins. The channel
// receives exactly one value and is then closed.
func (s *Scheduler) ScheduleAsync(ctx context.Context, freq prefs.NotificationFrequency, filtered []corpus.Factlet, now time.Time) <-chan error {
	done := make(chan error, 1)
	if freq.Off() {
		done <- s.Cancel(ctx)
		close(done)
		return done
	}
	gen := s.claim()
	go func() {
		defer close(done)
		_, err := s.schedule(ctx, gen, freq, filtered, now)
		done <- err
	}()
	return done
}

// Cancel removes every pending payload and supersedes any schedule still in
// flight.
func (s *Scheduler) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.queue.ClearPending(); err != nil {
		return fmt.Errorf("cancelling notifications: %w", err)
	}
	return nil
}
