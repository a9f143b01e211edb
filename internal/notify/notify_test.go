package notify

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/selection"
	"github.com/matheuskafuri/factlet/internal/store"
)

var base = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "notify.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// verifyNoLeaks checks goroutines once every later cleanup, including the
// store close registered by testStore, has run.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	ignore := goleak.IgnoreCurrent()
	t.Cleanup(func() { goleak.VerifyNone(t, ignore) })
}

func scienceEasy() []corpus.Factlet {
	return selection.Filter(corpus.Default().All(),
		corpus.NewCategorySet(corpus.Science),
		corpus.NewLevelSet(corpus.Level1))
}

func newScheduler(t *testing.T, q Queue, limit int) *Scheduler {
	picker := selection.NewSeededPicker(corpus.Default().All(), 7, 11)
	return NewScheduler(q, picker, limit, zaptest.NewLogger(t))
}

func TestScheduleDaily(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 0)
	filtered := scienceEasy()
	require.Len(t, filtered, 3)

	batch, err := sched.Schedule(context.Background(), prefs.NotifyDaily, filtered, base)
	require.NoError(t, err)
	require.Len(t, batch, DefaultCap)

	ids := make(map[string]bool)
	for _, f := range filtered {
		ids[f.ID] = true
	}
	seen := make(map[string]bool)
	for k, p := range batch {
		assert.True(t, ids[p.FactletID], "payload outside the filtered set")
		assert.Equal(t, base.Add(time.Duration(k+1)*24*time.Hour), p.FireAt)
		assert.Equal(t, "Science", p.Title)
		assert.NotEmpty(t, p.Body)
		assert.False(t, seen[p.ID], "payload ids are unique")
		seen[p.ID] = true
	}

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, DefaultCap)
}

func TestScheduleThenOffClearsEverything(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 0)

	_, err := sched.Schedule(context.Background(), prefs.NotifyDaily, scienceEasy(), base)
	require.NoError(t, err)

	batch, err := sched.Schedule(context.Background(), prefs.NotifyOff, scienceEasy(), base)
	require.NoError(t, err)
	assert.Empty(t, batch)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRescheduleReplacesBatch(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 5)

	_, err := sched.Schedule(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, err)
	_, err = sched.Schedule(context.Background(), prefs.NotifyEveryThreeHrs, scienceEasy(), base)
	require.NoError(t, err)

	pending, err := s.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 5)
	assert.True(t, base.Add(3*time.Hour).Equal(pending[0].FireAt))
}

func TestScheduleEmptyFilterFallsBack(t *testing.T) {
	sched := newScheduler(t, testStore(t), 4)
	batch, err := sched.Schedule(context.Background(), prefs.NotifyTwiceDaily, nil, base)
	require.NoError(t, err)
	assert.Len(t, batch, 4)
}

func TestScheduleAsync(t *testing.T) {
	verifyNoLeaks(t)

	s := testStore(t)
	sched := newScheduler(t, s, 3)
	err := <-sched.ScheduleAsync(context.Background(), prefs.NotifyDaily, scienceEasy(), base)
	require.NoError(t, err)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestCancelWinsOverInFlightSchedule(t *testing.T) {
	verifyNoLeaks(t)

	for i := 0; i < 20; i++ {
		s := testStore(t)
		sched := newScheduler(t, s, 0)

		done := sched.ScheduleAsync(context.Background(), prefs.NotifyDaily, scienceEasy(), base)
		require.NoError(t, sched.Cancel(context.Background()))
		require.NoError(t, <-done)

		pending, err := s.Pending()
		require.NoError(t, err)
		assert.Empty(t, pending, "run %d", i)
	}
}

func TestLaterScheduleWins(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 4)

	first := sched.ScheduleAsync(context.Background(), prefs.NotifyDaily, scienceEasy(), base)
	second := sched.ScheduleAsync(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	pending, err := s.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 4)
	assert.True(t, base.Add(time.Hour).Equal(pending[0].FireAt), "hourly batch is the one left")
	assert.True(t, base.Add(4*time.Hour).Equal(pending[3].FireAt))
}

func TestScheduleCancelledContext(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sched.Schedule(ctx, prefs.NotifyDaily, scienceEasy(), base)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingPoster struct {
	mu     sync.Mutex
	posted []string
	fail   bool
	notify chan struct{}
}

func (p *recordingPoster) Post(_ context.Context, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("no notifier")
	}
	p.posted = append(p.posted, title+": "+body)
	if p.notify != nil {
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

func (p *recordingPoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posted)
}

func TestTickDeliversDue(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 3)
	_, err := sched.Schedule(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, err)

	poster := &recordingPoster{}
	d, err := NewDispatcher(s, poster, nil, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	d.now = func() time.Time { return base.Add(2 * time.Hour) }

	n, err := d.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = d.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "delivered payloads are not posted twice")

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestTickRetiresFailedPosts(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 2)
	_, err := sched.Schedule(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, err)

	d, err := NewDispatcher(s, &recordingPoster{fail: true}, nil, 0, nil)
	require.NoError(t, err)
	d.now = func() time.Time { return base.Add(5 * time.Hour) }

	n, err := d.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTickReplenishesEmptyWindow(t *testing.T) {
	s := testStore(t)
	sched := newScheduler(t, s, 2)
	_, err := sched.Schedule(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, err)

	calls := 0
	replenish := func(ctx context.Context, now time.Time) error {
		calls++
		_, err := sched.Schedule(ctx, prefs.NotifyHourly, scienceEasy(), now)
		return err
	}
	d, err := NewDispatcher(s, &recordingPoster{}, replenish, time.Minute, nil)
	require.NoError(t, err)

	d.now = func() time.Time { return base.Add(time.Hour) }
	_, err = d.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls, "window still has a pending payload")

	d.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = d.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestDispatcherStartStop(t *testing.T) {
	verifyNoLeaks(t)

	s := testStore(t)
	sched := newScheduler(t, s, 1)
	_, err := sched.Schedule(context.Background(), prefs.NotifyHourly, scienceEasy(), base)
	require.NoError(t, err)

	poster := &recordingPoster{notify: make(chan struct{}, 1)}
	d, err := NewDispatcher(s, poster, nil, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, err)
	d.now = func() time.Time { return base.Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, d.Start(ctx))

	select {
	case <-poster.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher never polled")
	}
	require.NoError(t, d.Stop())
	assert.Equal(t, 1, poster.count())
}
