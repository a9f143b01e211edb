package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

var (
	flagShowJSON bool
	flagListAll  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current factlet, rotating it if due",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		now := time.Now()
		f, rotated := e.mgr.CheckAndRefresh(now)
		return printFactlet(cmd.OutOrStdout(), f, e.mgr.NextRefresh(now), rotated)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Rotate to a new factlet now",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		now := time.Now()
		f := e.mgr.Refresh(now)
		return printFactlet(cmd.OutOrStdout(), f, e.mgr.NextRefresh(now), true)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the factlets your selection draws from",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		fs := e.mgr.FilteredFactlets()
		if flagListAll {
			fs = e.corpus.All()
		}
		if flagShowJSON {
			return writeJSON(cmd.OutOrStdout(), fs)
		}

		current := e.mgr.Preferences().CurrentID()
		rows := make([][]string, 0, len(fs))
		for _, f := range fs {
			mark := ""
			if f.ID == current {
				mark = "*"
			}
			rows = append(rows, []string{mark, f.Category.String(), f.Level.DisplayName(), f.Text})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("", "CATEGORY", "LEVEL", "FACTLET").
			Rows(rows...).
			Width(cfg.WidgetWidth() * 3)
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d factlets\n", len(fs), e.corpus.Len())
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&flagShowJSON, "json", false, "print as JSON")
	nextCmd.Flags().BoolVar(&flagShowJSON, "json", false, "print as JSON")
	listCmd.Flags().BoolVar(&flagShowJSON, "json", false, "print as JSON")
	listCmd.Flags().BoolVar(&flagListAll, "all", false, "list the whole collection, ignoring your selection")

	rootCmd.AddCommand(showCmd, nextCmd, listCmd)
}

type shownFactlet struct {
	Factlet     corpus.Factlet `json:"factlet"`
	NextRefresh time.Time      `json:"next_refresh"`
	Rotated     bool           `json:"rotated"`
}

func printFactlet(w io.Writer, f corpus.Factlet, next time.Time, rotated bool) error {
	if flagShowJSON {
		return writeJSON(w, shownFactlet{Factlet: f, NextRefresh: next, Rotated: rotated})
	}
	fmt.Fprintf(w, "%s · %s\n", f.Category, f.Level.DisplayName())
	fmt.Fprintln(w, f.Text)
	fmt.Fprintf(w, "Next refresh %s\n", next.Local().Format("Mon 15:04"))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
