package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/olivoil/mvu/internal/config"
	"github.com/olivoil/mvu/internal/journal"
	"github.com/olivoil/mvu/internal/ui"
)

var (
	journalLimit  int
	journalNoView bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded runs",
	Long: `Runs started with --record (or journal.enabled) store every processed
message and the final frame in a SQLite journal.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openJournal()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
			return nil
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run's messages and final frame",
	Long:  "Show a run. The id may be abbreviated to any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openJournal()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, journal.ErrNotFound) {
				return fmt.Errorf("no run %q", args[0])
			}
			return err
		}
		events, err := db.Events(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		printRun(cmd.OutOrStdout(), run, events, !journalNoView)
		return nil
	},
}

func init() {
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of runs to list")
	journalShowCmd.Flags().BoolVar(&journalNoView, "no-view", false, "omit the final frame")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
}

func openJournal() (*journal.DB, error) {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return nil, err
	}
	if cfg.UI.NoColor {
		color.NoColor = true
	}
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return nil, fmt.Errorf("no journal at %s (run with --record first)", cfg.Journal.Path)
	}
	return journal.Open(cfg.Journal.Path)
}

func statusColor(s journal.Status) *color.Color {
	switch s {
	case journal.StatusOK:
		return color.New(color.FgGreen)
	case journal.StatusError:
		return color.New(color.FgRed)
	case journal.StatusKilled:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func printRuns(w io.Writer, runs []journal.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tSCREEN\tEVENTS\tSTATUS")
	for _, r := range runs {
		dur := "-"
		if r.FinishedAt != nil {
			dur = ui.FormatDuration(r.Duration())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			dur,
			r.Screen,
			r.Events,
			statusColor(r.Status).Sprint(r.Status),
		)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printRun(w io.Writer, r journal.Run, events []journal.Event, withView bool) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	fmt.Fprintf(w, "%s %s\n", bold.Sprint("run"), r.ID)
	fmt.Fprintf(w, "  started  %s\n", r.StartedAt.Local().Format(time.RFC3339))
	if r.FinishedAt != nil {
		fmt.Fprintf(w, "  finished %s (%s)\n", r.FinishedAt.Local().Format(time.RFC3339), ui.FormatDuration(r.Duration()))
	}
	fmt.Fprintf(w, "  screen   %s\n", r.Screen)
	fmt.Fprintf(w, "  status   %s\n", statusColor(r.Status).Sprint(r.Status))
	if r.Error != "" {
		fmt.Fprintf(w, "  error    %s\n", color.RedString(r.Error))
	}
	fmt.Fprintf(w, "  renders  %d\n", r.Renders)

	fmt.Fprintf(w, "\n%s (%d)\n", bold.Sprint("messages"), len(events))
	var start time.Time
	if len(events) > 0 {
		start = events[0].At
	}
	for _, e := range events {
		offset := fmt.Sprintf("+%7.3fs", e.At.Sub(start).Seconds())
		line := fmt.Sprintf("  %s %4d  %s", dim.Sprint(offset), e.Seq, e.Type)
		if e.Detail != "" {
			line += "  " + dim.Sprint(e.Detail)
		}
		fmt.Fprintln(w, line)
	}

	if withView && r.FinalView != "" {
		fmt.Fprintf(w, "\n%s\n", bold.Sprint("final frame"))
		for _, l := range strings.Split(r.FinalView, "\n") {
			fmt.Fprintf(w, "  │ %s\n", l)
		}
	}
}
