package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/export"
	"github.com/fakeyudi/labclock/internal/history"
	"github.com/fakeyudi/labclock/internal/tui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List completed sessions, or show one session's final schedule",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfig().HistoryPath
		if path == "" {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			path = history.DefaultPath(dir)
		}
		store, err := history.Open(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("no archived session %s", args[0])
				}
				return err
			}
			cmd.Printf("Session: %s\n", e.ID)
			cmd.Printf("Device:  %s\n", e.Device)
			cmd.Printf("Note:    %s\n", e.Note)
			cmd.Printf("Export:  %s\n\n", e.ExportPath)
			printSchedule(cmd.OutOrStdout(), export.Rows(e.Tasks))
			return nil
		}

		entries, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("no completed sessions")
			return nil
		}
		for _, e := range entries {
			cmd.Printf("%s  %s  %-20s %-30s %s\n",
				e.ID,
				e.StartedAt.Local().Format(export.TimestampLayout),
				e.Device,
				e.Note,
				tui.FormatMMSS(e.EndedAt.Sub(e.StartedAt)),
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of sessions to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
