package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/typesteps/typesteps/internal/models"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a summary of the tracked statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 5, "Number of applications and projects to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	engine := mgr.Analytics()
	summary := engine.Summary()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Today:\t%s / %s (%.0f%%)\n",
		humanize.Comma(int64(summary.Today)), humanize.Comma(int64(summary.Goal)), summary.GoalProgress*100)
	fmt.Fprintf(w, "This week:\t%s\n", humanize.Comma(int64(summary.Weekly)))
	fmt.Fprintf(w, "This month:\t%s\n", humanize.Comma(int64(summary.Monthly)))
	fmt.Fprintf(w, "All time:\t%s\n", humanize.Comma(int64(summary.AllTime)))
	fmt.Fprintf(w, "Streak:\t%d days\n", summary.Streak)
	if summary.BestDay.Count > 0 {
		fmt.Fprintf(w, "Best day:\t%s (%s)\n", summary.BestDay.Day, humanize.Comma(int64(summary.BestDay.Count)))
	}
	if summary.AllTime > 0 {
		fmt.Fprintf(w, "Peak hour:\t%02d:00\n", summary.PeakHour.Hour)
	}
	if summary.Badge != "" {
		fmt.Fprintf(w, "Badge:\t%s\n", summary.Badge)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printRanked(cmd.OutOrStdout(), "Top applications", engine.TopApps(statsTop))
	printRanked(cmd.OutOrStdout(), "Top projects", engine.TopProjects(statsTop))
	return nil
}

func printRanked(out io.Writer, title string, entries []models.RankedEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, e := range entries {
		fmt.Fprintf(w, "%d.\t%s\t%s\t\n", i+1, e.Name, humanize.Comma(int64(e.Count)))
	}
	_ = w.Flush()
}
