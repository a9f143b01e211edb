package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/factlet/internal/corpus"
	"github.com/matheuskafuri/factlet/internal/prefs"
)

var (
	flagToggleCategory string
	flagToggleAll      bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a preference",
}

var setIntervalCmd = &cobra.Command{
	Use:   "interval <hourly|half-day|daily>",
	Short: "Set how often the factlet rotates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := prefs.ParseRefreshInterval(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		p := e.mgr.SetRefreshInterval(r)
		fmt.Fprintf(cmd.OutOrStdout(), "Refresh: %s\n", p.RefreshInterval.DisplayName())
		return nil
	},
}

var setColorCmd = &cobra.Command{
	Use:   "color <dark|light>",
	Short: "Set the widget text color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := prefs.ParseTextColor(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		p := e.mgr.SetTextColor(c)
		fmt.Fprintf(cmd.OutOrStdout(), "Text color: %s\n", p.TextColor.DisplayName())
		return nil
	},
}

var setNotifyCmd = &cobra.Command{
	Use:   "notify <off|hourly|every-3-hours|every-6-hours|twice-daily|daily>",
	Short: "Set how often factlets arrive as notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := prefs.ParseNotificationFrequency(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		if !f.Off() && !<-e.mgr.RequestNotificationPermission(ctx) {
			e.mgr.SetNotificationFrequency(ctx, prefs.NotifyOff)
			return errors.New("notifications unavailable: no desktop notifier found (set notifications.command in config)")
		}

		p, done := e.mgr.SetNotificationFrequency(ctx, f)
		if err := wait(done); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notifications: %s\n", p.NotificationFrequency.DisplayName())
		if p.NotificationsEnabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Run `factlet notify run` (or keep the app open) to deliver them.")
		}
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle a category or difficulty level in your selection",
}

var toggleCategoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "Toggle a category (\"All\" selects everything)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := corpus.ParseCategory(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		p, done := e.mgr.ToggleCategory(commandContext(cmd), cat)
		if err := wait(done); err != nil {
			return err
		}
		printSelection(cmd.OutOrStdout(), p)
		return nil
	},
}

var toggleLevelCmd = &cobra.Command{
	Use:   "level <easy|medium|hard>",
	Short: "Toggle a difficulty level",
	Long: `Toggle a difficulty level for one category (--category) or for every
selected category (--all, the default when no category is given).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := corpus.ParseLevel(args[0])
		if err != nil {
			return err
		}
		if flagToggleAll && flagToggleCategory != "" {
			return errors.New("--all and --category are mutually exclusive")
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		var (
			p    prefs.Preferences
			done <-chan error
		)
		if flagToggleCategory == "" {
			p, done = e.mgr.ToggleLevelEverywhere(ctx, level)
		} else {
			cat, err := corpus.ParseCategory(flagToggleCategory)
			if err != nil {
				return err
			}
			var ok bool
			p, ok, done = e.mgr.ToggleLevel(ctx, level, cat)
			if !ok {
				return fmt.Errorf("levels are set per category; pass a concrete category instead of %q", cat)
			}
		}
		if err := wait(done); err != nil {
			return err
		}
		printSelection(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	toggleLevelCmd.Flags().StringVar(&flagToggleCategory, "category", "", "category to change")
	toggleLevelCmd.Flags().BoolVar(&flagToggleAll, "all", false, "change every selected category")

	setCmd.AddCommand(setIntervalCmd, setColorCmd, setNotifyCmd)
	toggleCmd.AddCommand(toggleCategoryCmd, toggleLevelCmd)
	rootCmd.AddCommand(setCmd, toggleCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// wait blocks on a reschedule triggered by a mutation, if there is one.
func wait(done <-chan error) error {
	if done == nil {
		return nil
	}
	if err := <-done; err != nil {
		return fmt.Errorf("rescheduling notifications: %w", err)
	}
	return nil
}

func printSelection(w io.Writer, p prefs.Preferences) {
	fmt.Fprintf(w, "Categories: %s\n", p.Categories)
	for _, c := range p.Categories.Concrete() {
		names := make([]string, 0, 3)
		for _, l := range p.Levels.LevelsFor(c).Levels() {
			names = append(names, l.DisplayName())
		}
		fmt.Fprintf(w, "  %-12s %s\n", c, strings.Join(names, ", "))
	}
}
