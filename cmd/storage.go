package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var flagResetYes bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		keys, pending, size, err := e.store.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		p := e.mgr.Preferences()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", e.store.Path())
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		fmt.Fprintf(out, "Keys: %d\n", keys)
		fmt.Fprintf(out, "Factlets: %d selected of %d\n", len(e.mgr.FilteredFactlets()), e.corpus.Len())
		fmt.Fprintf(out, "Refresh: %s\n", p.RefreshInterval.DisplayName())
		fmt.Fprintf(out, "Notifications: %s (%d pending)\n", p.NotificationFrequency.DisplayName(), pending)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all preferences and scheduled notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagResetYes {
			return errors.New("refusing to reset without --yes")
		}
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Reset(); err != nil {
			return fmt.Errorf("resetting: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reset. The next launch starts onboarding again.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetYes, "yes", false, "confirm the reset")

	rootCmd.AddCommand(statsCmd, resetCmd)
}

func formatDuration(d interface{ Hours() float64 }) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(h))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
