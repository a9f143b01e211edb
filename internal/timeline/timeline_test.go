package timeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
	"github.com/matheuskafuri/factlet/internal/store"
)

var last = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func seeded(t *testing.T) (*Provider, *store.Store, corpus.Factlet) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "widget.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cur := corpus.Default().All()[0]
	p := prefs.Defaults()
	p.Current = &cur
	p.LastUpdate = &last
	p.RefreshInterval = prefs.Hourly
	p.TextColor = prefs.Light
	require.NoError(t, prefs.Save(s, p))

	return New(s, nil, zaptest.NewLogger(t)), s, cur
}

func TestEntryNotDueShowsStored(t *testing.T) {
	prov, _, cur := seeded(t)

	e, err := prov.Entry(context.Background(), last.Add(59*time.Minute))
	require.NoError(t, err)
	assert.False(t, e.Due)
	assert.Equal(t, cur.ID, e.Factlet.ID)
	assert.Equal(t, prefs.Light, e.TextColor)
	assert.Equal(t, last.Add(time.Hour), e.NextRefresh)
}

func TestEntryDueIsDeterministicPerSlot(t *testing.T) {
	prov, _, cur := seeded(t)
	ctx := context.Background()

	a, err := prov.Entry(ctx, last.Add(90*time.Minute))
	require.NoError(t, err)
	b, err := prov.Entry(ctx, last.Add(119*time.Minute))
	require.NoError(t, err)

	assert.True(t, a.Due)
	assert.Equal(t, a.Factlet.ID, b.Factlet.ID, "same slot, same factlet")
	assert.NotEqual(t, cur.ID, a.Factlet.ID, "due entries rotate away from the stored factlet")
	assert.Equal(t, last.Add(time.Hour), a.SlotStart)
	assert.Equal(t, last.Add(2*time.Hour), a.NextRefresh)
}

func TestEntryFirstRun(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "empty.db"), nil)
	require.NoError(t, err)
	defer s.Close()

	at := time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC)
	e, err := New(s, nil, nil).Entry(context.Background(), at)
	require.NoError(t, err)
	assert.True(t, e.Due)
	assert.NotEmpty(t, e.Factlet.ID)
	assert.Equal(t, prefs.Dark, e.TextColor)
	assert.Equal(t, at.Truncate(time.Hour), e.SlotStart)
}

func TestEntryHonoursFilter(t *testing.T) {
	prov, s, _ := seeded(t)
	require.NoError(t, s.Set(prefs.KeySelectedCategories, `["Geography"]`))

	for h := 1; h < 24; h++ {
		e, err := prov.Entry(context.Background(), last.Add(time.Duration(h)*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, corpus.Geography, e.Factlet.Category)
	}
}

func TestCommitPersistsEntry(t *testing.T) {
	prov, s, _ := seeded(t)
	ctx := context.Background()
	at := last.Add(150 * time.Minute)

	want, err := prov.Entry(ctx, at)
	require.NoError(t, err)
	got, err := prov.Commit(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, want.Factlet.ID, got.Factlet.ID)

	stored, err := prefs.Load(s)
	require.NoError(t, err)
	assert.Equal(t, want.Factlet.ID, stored.CurrentID())
	assert.True(t, last.Add(2*time.Hour).Equal(*stored.LastUpdate))

	after, err := prov.Entry(ctx, at)
	require.NoError(t, err)
	assert.False(t, after.Due)
	assert.Equal(t, want.Factlet.ID, after.Factlet.ID)
}

func TestTimeline(t *testing.T) {
	prov, _, _ := seeded(t)
	entries, err := prov.Timeline(context.Background(), last.Add(10*time.Minute), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.False(t, entries[0].Due)
	assert.Equal(t, last.Add(time.Hour), entries[1].Date)
	assert.Equal(t, last.Add(2*time.Hour), entries[2].Date)
}

func TestTimelineNeverRepeatsNeighbours(t *testing.T) {
	prov, s, _ := seeded(t)
	require.NoError(t, s.Set(prefs.KeySelectedCategories, `["Science"]`))
	require.NoError(t, s.Set(prefs.KeyCategoryLevels, `{"Science":["level1"]}`))

	entries, err := prov.Timeline(context.Background(), last.Add(time.Hour), 24)
	require.NoError(t, err)
	require.Len(t, entries, 24)
	for i := 1; i < len(entries); i++ {
		assert.NotEqual(t, entries[i-1].Factlet.ID, entries[i].Factlet.ID, "entry %d repeats its neighbour", i)
		assert.Equal(t, corpus.Science, entries[i].Factlet.Category)
		assert.Equal(t, corpus.Level1, entries[i].Factlet.Level)
	}
}

func TestTimelineMatchesCommittedEntries(t *testing.T) {
	prov, _, _ := seeded(t)
	ctx := context.Background()

	planned, err := prov.Timeline(ctx, last.Add(time.Hour), 4)
	require.NoError(t, err)
	for _, want := range planned {
		got, err := prov.Commit(ctx, want.Date)
		require.NoError(t, err)
		assert.Equal(t, want.Factlet.ID, got.Factlet.ID)
	}
}

func TestEntryCancelled(t *testing.T) {
	prov, _, _ := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := prov.Entry(ctx, last)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaceholder(t *testing.T) {
	e := Placeholder(last)
	assert.Equal(t, corpus.Science, e.Factlet.Category)
	assert.Contains(t, e.Factlet.Text, "Honey")
}

func TestRender(t *testing.T) {
	e := Placeholder(last)
	for _, f := range Families() {
		out := Render(e, f, 40)
		assert.NotEmpty(t, out, f)
		if f == Inline {
			assert.LessOrEqual(t, lipgloss.Width(out), 40)
			assert.True(t, strings.HasPrefix(stripANSI(out), "SCIENCE"))
		}
	}

	long := e
	long.Factlet.Text = strings.Repeat("word ", 200)
	out := stripANSI(Render(long, Small, 30))
	assert.LessOrEqual(t, strings.Count(out, "\n"), lineLimit[Small]+1)
	assert.Contains(t, out, "…")
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("LARGE")
	require.NoError(t, err)
	assert.Equal(t, Large, f)
	_, err = ParseFamily("huge")
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, Wrap("one two three", 8))
	assert.Nil(t, Wrap("   ", 8))
}

func stripANSI(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			skip = true
		case skip && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			skip = false
		case !skip:
			b.WriteRune(r)
		}
	}
	return b.String()
}
