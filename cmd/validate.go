package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/phase"
	"github.com/fakeyudi/labclock/internal/schedule"
	"github.com/fakeyudi/labclock/internal/tui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the protocol catalog and phase groups for configuration errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		tbl, err := phase.Map(schedule.Build(cat.Tasks, time.Time{}), cat.Phases)
		if err != nil {
			return err
		}
		cmd.Printf("catalog OK: %d sub-tasks in %d phases, %s total\n",
			len(cat.Tasks), tbl.Len(), tui.FormatMMSS(cat.TotalDuration()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
