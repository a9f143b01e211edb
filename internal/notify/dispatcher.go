package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the dispatcher looks for due payloads.
const DefaultPollInterval = time.Minute

// deliveredRetention is how long delivered payloads stay openable.
const deliveredRetention = 7 * 24 * time.Hour

// Poster shows a notification to the user.
type Poster interface {
	Post(ctx context.Context, title, body string) error
}

// Replenisher schedules the next batch once the pending window is empty. It
// decides on its own whether notifications are still enabled.
type Replenisher func(ctx context.Context, now time.Time) error

// Dispatcher delivers due payloads on a fixed poll.
type Dispatcher struct {
	scheduler gocron.Scheduler
	queue     Queue
	poster    Poster
	replenish Replenisher
	poll      time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func NewDispatcher(q Queue, poster Poster, replenish Replenisher, poll time.Duration, log *zap.Logger) (*Dispatcher, error) {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Dispatcher{
		scheduler: s,
		queue:     q,
		poster:    poster,
		replenish: replenish,
		poll:      poll,
		now:       time.Now,
		log:       log,
	}, nil
}

// Start registers the poll job and starts the scheduler. The first poll runs
// immediately.
func (d *Dispatcher) Start(ctx context.Context) error {
	_, err := d.scheduler.NewJob(
		gocron.DurationJob(d.poll),
		gocron.NewTask(func() {
			if _, err := d.Tick(ctx); err != nil {
				d.log.Warn("notification poll failed", zap.Error(err))
			}
		}),
		gocron.WithName("factlet_notifications"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register poll job: %w", err)
	}
	d.scheduler.Start()
	d.log.Info("notification dispatcher started", zap.Duration("poll", d.poll))
	return nil
}

// Stop shuts the scheduler down and waits for a running poll to finish.
func (d *Dispatcher) Stop() error {
	return d.scheduler.Shutdown()
}

// Tick delivers every due payload once and replenishes an empty window. It
// returns the number of payloads delivered.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := d.now()

	due, err := d.queue.DuePending(now)
	if err != nil {
		return 0, fmt.Errorf("loading due notifications: %w", err)
	}

	delivered := 0
	for _, n := range due {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		// retired even when posting fails
		if err := d.poster.Post(ctx, n.Title, n.Body); err != nil {
			d.log.Warn("posting notification", zap.String("id", n.ID), zap.Error(err))
		} else {
			delivered++
		}
		if err := d.queue.MarkDelivered(n.ID, now); err != nil {
			return delivered, err
		}
	}

	if _, err := d.queue.PruneDelivered(now.Add(-deliveredRetention)); err != nil {
		d.log.Debug("pruning notifications", zap.Error(err))
	}

	if d.replenish == nil {
		return delivered, nil
	}
	pending, err := d.queue.Pending()
	if err != nil {
		return delivered, fmt.Errorf("loading pending notifications: %w", err)
	}
	if len(pending) == 0 {
		if err := d.replenish(ctx, now); err != nil {
			return delivered, fmt.Errorf("replenishing notifications: %w", err)
		}
	}
	return delivered, nil
}
