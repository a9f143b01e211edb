package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/timeline"
)

// testConfig writes a config that keeps the store and log inside dir and
// posts notifications through a no-op command.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "store_path: " + filepath.Join(dir, "factlet.db") + "\n" +
		"log_file: " + filepath.Join(dir, "factlet.log") + "\n" +
		"notifications:\n  cap: 5\n  command: [\"true\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", config}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, config string, args ...string) string {
	t.Helper()
	out, err := run(t, config, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	out := mustRun(t, testConfig(t), "version")
	assert.Contains(t, out, "factlet 1.2.3")
}

func TestShowIsStableUntilDue(t *testing.T) {
	cfgPath := testConfig(t)

	var first, second shownFactlet
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "show", "--json")), &first))
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "show", "--json")), &second))
	assert.NotEmpty(t, first.Factlet.ID)
	assert.Equal(t, first.Factlet.ID, second.Factlet.ID)
	assert.False(t, second.Rotated)
}

func TestNextRotates(t *testing.T) {
	cfgPath := testConfig(t)

	var before, after shownFactlet
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "show", "--json")), &before))
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "next", "--json")), &after))
	assert.NotEqual(t, before.Factlet.ID, after.Factlet.ID)
	assert.True(t, after.Rotated)
}

func TestToggleNarrowsList(t *testing.T) {
	cfgPath := testConfig(t)

	out := mustRun(t, cfgPath, "toggle", "category", "science")
	assert.Contains(t, out, "Categories: Science")

	out = mustRun(t, cfgPath, "toggle", "level", "hard", "--category", "science")
	assert.Contains(t, out, "Easy, Medium")

	var fs []corpus.Factlet
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "list", "--json")), &fs))
	require.Len(t, fs, 6)
	for _, f := range fs {
		assert.Equal(t, corpus.Science, f.Category)
		assert.NotEqual(t, corpus.Level3, f.Level)
	}

	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "list", "--all", "--json")), &fs))
	assert.Len(t, fs, corpus.Default().Len())
}

func TestToggleLevelRejectsWildcard(t *testing.T) {
	_, err := run(t, testConfig(t), "toggle", "level", "easy", "--category", "all")
	assert.Error(t, err)
}

func TestSetPreferences(t *testing.T) {
	cfgPath := testConfig(t)

	assert.Contains(t, mustRun(t, cfgPath, "set", "interval", "daily"), "Refresh: Daily")
	assert.Contains(t, mustRun(t, cfgPath, "set", "color", "light"), "Text color: Light")

	_, err := run(t, cfgPath, "set", "interval", "weekly")
	assert.Error(t, err)

	out := mustRun(t, cfgPath, "stats")
	assert.Contains(t, out, "Refresh: Daily")
	assert.Contains(t, out, "Factlets: 64 selected of 64")
}

func TestNotificationLifecycle(t *testing.T) {
	cfgPath := testConfig(t)

	out := mustRun(t, cfgPath, "set", "notify", "daily")
	assert.Contains(t, out, "Notifications: Daily")

	out = mustRun(t, cfgPath, "notify", "list")
	assert.Contains(t, out, "5 pending")

	out = mustRun(t, cfgPath, "notify", "run", "--once")
	assert.Contains(t, out, "Delivered 0 notification(s).")

	out = mustRun(t, cfgPath, "notify", "cancel")
	assert.Contains(t, out, "Notifications off.")
	assert.Contains(t, mustRun(t, cfgPath, "notify", "list"), "No notifications scheduled.")
}

func TestNotifyOpenUnknown(t *testing.T) {
	_, err := run(t, testConfig(t), "notify", "open", "nope")
	assert.Error(t, err)
}

func TestWidget(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "show")

	var e timeline.Entry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "widget", "--json")), &e))
	assert.NotEmpty(t, e.Factlet.Text)
	assert.False(t, e.Due)

	var es []timeline.Entry
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfgPath, "widget", "--timeline", "3", "--json")), &es))
	assert.Len(t, es, 3)

	out := mustRun(t, cfgPath, "widget", "--family", "inline")
	assert.NotEmpty(t, strings.TrimSpace(out))

	_, err := run(t, cfgPath, "widget", "--family", "huge")
	assert.Error(t, err)
	_, err = run(t, cfgPath, "widget", "--at", "someday")
	assert.Error(t, err)
}

func TestResetRequiresConfirmation(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, cfgPath, "set", "interval", "daily")

	_, err := run(t, cfgPath, "reset")
	assert.Error(t, err)

	assert.Contains(t, mustRun(t, cfgPath, "reset", "--yes"), "Reset.")
	assert.Contains(t, mustRun(t, cfgPath, "stats"), "Refresh: Hourly")
}
