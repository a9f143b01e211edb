package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/timeline"
)

var (
	flagWidgetAt       string
	flagWidgetJSON     bool
	flagWidgetCommit   bool
	flagWidgetFamily   string
	flagWidgetWidth    int
	flagWidgetTimeline int
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Render the factlet a widget should show",
	Long: `Compute the widget entry straight from the shared store, without
starting the app. The same instant always yields the same factlet until the
store changes, so status bars can poll freely.

Examples:
  factlet widget --family inline
  factlet widget --at 3h --json
  factlet widget --timeline 4 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		family, err := timeline.ParseFamily(flagWidgetFamily)
		if err != nil {
			return err
		}
		now := time.Now()
		at, err := parseAt(flagWidgetAt, now)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
		width := flagWidgetWidth
		if width <= 0 {
			width = cfg.WidgetWidth()
		}

		entries, err := widgetEntries(cmd.Context(), at)
		if err != nil {
			return err
		}

		if flagWidgetJSON {
			if flagWidgetTimeline > 0 {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return writeJSON(cmd.OutOrStdout(), entries[0])
		}
		for i, e := range entries {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), timeline.Render(e, family, width))
		}
		return nil
	},
}

// widgetEntries falls back to the placeholder when the store is unreadable,
// so a widget never renders empty.
func widgetEntries(ctx context.Context, at time.Time) ([]timeline.Entry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s, c, err := openStore()
	if err != nil {
		logger.Warn("widget store unavailable", zap.Error(err))
		return []timeline.Entry{timeline.Placeholder(at)}, nil
	}
	defer s.Close()

	p := timeline.New(s, c, logger)
	switch {
	case flagWidgetTimeline > 0:
		return p.Timeline(ctx, at, flagWidgetTimeline)
	case flagWidgetCommit:
		e, err := p.Commit(ctx, at)
		if err != nil {
			return nil, err
		}
		return []timeline.Entry{e}, nil
	default:
		e, err := p.Entry(ctx, at)
		if err != nil {
			return nil, err
		}
		return []timeline.Entry{e}, nil
	}
}

func init() {
	widgetCmd.Flags().StringVar(&flagWidgetAt, "at", "", "instant to render: RFC3339 time or offset from now (e.g., 3h, 1d)")
	widgetCmd.Flags().BoolVar(&flagWidgetJSON, "json", false, "print the entry as JSON")
	widgetCmd.Flags().BoolVar(&flagWidgetCommit, "commit", false, "persist the entry as the current factlet")
	widgetCmd.Flags().StringVar(&flagWidgetFamily, "family", string(timeline.Medium), "layout: small, medium, large or inline")
	widgetCmd.Flags().IntVar(&flagWidgetWidth, "width", 0, "render width in columns (default from config)")
	widgetCmd.Flags().IntVar(&flagWidgetTimeline, "timeline", 0, "print this many consecutive refresh slots")

	rootCmd.AddCommand(widgetCmd)
}

// parseAt accepts an RFC3339 time, an offset from now, or nothing.
func parseAt(s string, now time.Time) (time.Time, error) {
	if s == "" || s == "now" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := parseOffset(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}

// parseOffset is time.ParseDuration plus a whole-day "Nd" form.
func parseOffset(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
