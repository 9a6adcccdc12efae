package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/export"
	"github.com/fakeyudi/labclock/internal/history"
	"github.com/fakeyudi/labclock/internal/logx"
	"github.com/fakeyudi/labclock/internal/schedule"
	"github.com/fakeyudi/labclock/internal/session"
	"github.com/fakeyudi/labclock/internal/tui"
)

var (
	runDevice string
	runNote   string
	runPlain  bool
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a protocol session and show the live countdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if runOutput != "" {
			cfg.OutputDir = runOutput
		}

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		dir, err := dataDir()
		if err != nil {
			return err
		}
		logPath := cfg.LogPath
		if logPath == "" {
			logPath = logx.DefaultPath(dir)
		}
		interactive := !runPlain && term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
		logCfg := logx.Config{Level: cfg.LogLevel, Path: logPath}
		if cfg.LogConsole && !interactive {
			logCfg.Console = cmd.ErrOrStderr()
		}
		log, closeLog, err := logx.New(logCfg)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		defer closeLog()

		sess, err := session.New(cat, log)
		if err != nil {
			return fmt.Errorf("invalid catalog: %w", err)
		}

		historyPath := cfg.HistoryPath
		if historyPath == "" {
			historyPath = history.DefaultPath(dir)
		}
		opts := tui.Options{
			Tick:       cfg.Tick(),
			OnComplete: completeFunc(cmd.Context(), cfg.OutputDir, cfg.ExportFormat, historyPath, log),
			Device:     runDevice,
			Note:       runNote,
		}

		if !interactive {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tui.RunPlain(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		}

		if runDevice != "" && runNote != "" {
			if err := sess.Start(runDevice, runNote, timeNow()); err != nil {
				return err
			}
		}
		return tui.Run(sess, opts)
	},
}

// completeFunc writes the final schedule export and archives the session.
// A failed archive is logged but does not fail the export.
func completeFunc(ctx context.Context, outputDir, format, historyPath string, log zerolog.Logger) tui.CompleteFunc {
	return func(sched schedule.Schedule, st session.State) (string, error) {
		path, err := export.Write(outputDir, st.Device, st.Note, sched, export.ForFormat(format))
		if err != nil {
			log.Error().Err(err).Str("session", st.ID).Msg("export failed")
			return "", err
		}
		log.Info().Str("session", st.ID).Str("path", path).Msg("schedule exported")

		store, err := history.Open(ctx, historyPath)
		if err != nil {
			log.Warn().Err(err).Str("path", historyPath).Msg("history unavailable")
			return path, nil
		}
		defer store.Close()

		entry := history.Entry{
			ID:         st.ID,
			Device:     st.Device,
			Note:       st.Note,
			StartedAt:  sched.Start(),
			EndedAt:    sched.End(),
			ExportPath: path,
		}
		if err := store.Archive(ctx, entry, sched); err != nil {
			log.Warn().Err(err).Str("session", st.ID).Msg("archiving session failed")
		}
		return path, nil
	}
}

func init() {
	runCmd.Flags().StringVar(&runDevice, "device", "", "device label (asked for when omitted)")
	runCmd.Flags().StringVar(&runNote, "note", "", "session note (asked for when omitted)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "line-based output instead of the full-screen TUI")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "directory for the exported schedule (overrides config)")
	rootCmd.AddCommand(runCmd)
}
