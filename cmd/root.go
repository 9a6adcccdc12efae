package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/config"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// catalogPath overrides the configured catalog file.
var catalogPath string

var rootCmd = &cobra.Command{
	Use:   "labclock",
	Short: "Run a timed multi-phase data-collection protocol as a live countdown",
	// Errors are printed by Execute; usage is noise for runtime failures.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		if catalogPath != "" {
			cfg.CatalogPath = catalogPath
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// loadCatalog loads and validates the configured protocol catalog.
func loadCatalog() (catalog.Catalog, error) {
	c, err := catalog.Load(GetConfig().CatalogPath)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("loading catalog: %w", err)
	}
	return c, nil
}

// dataDir resolves the XDG data directory used for logs and history.
func dataDir() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", fmt.Errorf("resolving data directory: %w", err)
	}
	return dir, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "protocol catalog file (JSON or YAML); default is the built-in protocol")
}
