package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/export"
	"github.com/fakeyudi/labclock/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View an exported schedule file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		parser := export.ForFile(strings.ToLower(filepath.Ext(path)))
		rows, err := parser.Parse(data)
		if err != nil {
			return err
		}
		printSchedule(cmd.OutOrStdout(), rows)
		return nil
	},
}

// printSchedule writes a plain-text table of exported rows, flagging tasks
// whose actual span differs from the nominal duration.
func printSchedule(w io.Writer, rows []export.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(empty schedule)")
		return
	}
	first, last := rows[0], rows[len(rows)-1]
	fmt.Fprintf(w, "Started:  %s\n", first.PlannedStart.Format(export.TimestampLayout))
	fmt.Fprintf(w, "Ended:    %s\n", last.PlannedEnd.Format(export.TimestampLayout))
	fmt.Fprintf(w, "Duration: %s\n\n", tui.FormatMMSS(last.PlannedEnd.Sub(first.PlannedStart)))

	for i, r := range rows {
		actual := r.PlannedEnd.Sub(r.PlannedStart)
		nominal := tui.FormatMMSS(time.Duration(r.Duration) * time.Second)
		mark := ""
		if int(actual.Seconds()) != r.Duration {
			mark = fmt.Sprintf("  (planned %s, actual %s)", nominal, tui.FormatMMSS(actual))
		}
		fmt.Fprintf(w, "%3d. %s-%s  %s%s\n", i+1,
			r.PlannedStart.Format("15:04:05"), r.PlannedEnd.Format("15:04:05"), r.Name, mark)
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
