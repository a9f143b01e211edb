package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/notify"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

var (
	flagNotifyOnce      bool
	flagNotifyOlderThan string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Deliver and inspect scheduled notifications",
}

var notifyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver due notifications until interrupted",
	Long: `Poll the shared store and post every due notification through the
desktop notifier. Runs in the foreground until interrupted; use --once from
cron or a systemd timer instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		d, err := notify.NewDispatcher(e.store, e.notifier, e.mgr.Replenish, cfg.PollDuration(), logger)
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		if flagNotifyOnce {
			n, err := d.Tick(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d notification(s).\n", n)
			return nil
		}

		if err := d.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delivering notifications every %s. Press Ctrl+C to stop.\n", cfg.PollDuration())
		<-ctx.Done()
		if err := d.Stop(); err != nil {
			logger.Warn("stopping dispatcher", zap.Error(err))
		}
		return nil
	},
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		pending, err := s.Pending()
		if err != nil {
			return fmt.Errorf("loading notifications: %w", err)
		}
		if len(pending) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notifications scheduled.")
			return nil
		}

		rows := make([][]string, 0, len(pending))
		for _, n := range pending {
			rows = append(rows, []string{shortID(n.ID), n.FireAt.Local().Format("Mon Jan 2 15:04"), n.Title, truncate(n.Body, 60)})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "FIRES", "TITLE", "BODY").
			Rows(rows...)
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", len(pending))
		return nil
	},
}

var notifyOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a delivered notification, making its factlet current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := resolveNotificationID(e, args[0])
		if err != nil {
			return err
		}
		now := time.Now()
		f, refreshed, err := e.mgr.OpenNotification(id, now)
		if err != nil {
			return err
		}
		if !refreshed {
			fmt.Fprintln(cmd.OutOrStdout(), "Already opened; factlet unchanged.")
		}
		return printFactlet(cmd.OutOrStdout(), f, e.mgr.NextRefresh(now), refreshed)
	},
}

var notifyCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Turn notifications off and drop everything pending",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		_, done := e.mgr.SetNotificationFrequency(commandContext(cmd), prefs.NotifyOff)
		if err := wait(done); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Notifications off.")
		return nil
	},
}

var notifyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Forget delivered notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		retention, err := parseOffset(flagNotifyOlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than value: %w", err)
		}
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.PruneDelivered(time.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}
		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d notification(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

func init() {
	notifyRunCmd.Flags().BoolVar(&flagNotifyOnce, "once", false, "deliver what is due and exit")
	notifyPruneCmd.Flags().StringVar(&flagNotifyOlderThan, "older-than", "7d", "retention for delivered notifications (e.g., 7d, 48h)")

	notifyCmd.AddCommand(notifyRunCmd, notifyListCmd, notifyOpenCmd, notifyCancelCmd, notifyPruneCmd)
	rootCmd.AddCommand(notifyCmd)
}

// resolveNotificationID accepts a full id or the short prefix notify list
// prints.
func resolveNotificationID(e *env, arg string) (string, error) {
	if _, ok, err := e.store.Notification(arg); err != nil {
		return "", err
	} else if ok {
		return arg, nil
	}
	id, err := e.store.NotificationByPrefix(arg)
	if err != nil {
		return "", err
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
