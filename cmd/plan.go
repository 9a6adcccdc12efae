package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/export"
	"github.com/fakeyudi/labclock/internal/phase"
	"github.com/fakeyudi/labclock/internal/schedule"
	"github.com/fakeyudi/labclock/internal/tui"
)

// timeNow is the clock used by commands; tests replace it.
var timeNow = time.Now

var (
	planStart string
	planCSV   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the planned schedule without starting a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		start := timeNow()
		if planStart != "" {
			start, err = time.ParseInLocation(export.TimestampLayout, planStart, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --start %q (want YYYY-MM-DD HH:MM:SS): %w", planStart, err)
			}
		}

		sched := schedule.Build(cat.Tasks, start)
		if planCSV {
			data, err := (&export.CSVRenderer{}).Render(sched)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		tbl, err := phase.Map(sched, cat.Phases)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), cat, sched, tbl)
		return nil
	},
}

// printPlan writes the schedule grouped by phase.
func printPlan(w io.Writer, cat catalog.Catalog, sched schedule.Schedule, tbl *phase.Table) {
	fmt.Fprintf(w, "Protocol: %d sub-tasks in %d phases, %s total\n", len(cat.Tasks), tbl.Len(), tui.FormatMMSS(sched.Total()))
	fmt.Fprintf(w, "Start:    %s\n", sched.Start().Format(export.TimestampLayout))
	fmt.Fprintf(w, "End:      %s\n\n", sched.End().Format(export.TimestampLayout))
	for g, group := range tbl.Groups {
		fmt.Fprintf(w, "## %s\n", group.Title)
		for _, i := range tbl.TasksOf[g] {
			t := sched[i]
			fmt.Fprintf(w, "  %s-%s  %-50s %s\n",
				t.PlannedStart.Format("15:04:05"),
				t.PlannedEnd.Format("15:04:05"),
				t.Name,
				tui.FormatMMSS(t.Duration),
			)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	planCmd.Flags().StringVar(&planStart, "start", "", "planned start, YYYY-MM-DD HH:MM:SS local time (default now)")
	planCmd.Flags().BoolVar(&planCSV, "csv", false, "print the plan in the export CSV format")
	rootCmd.AddCommand(planCmd)
}
