package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/internal/config"
	"github.com/OpenTraceLab/pcbgen/internal/shared"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pcbgen",
	Short: "pcbgen - build KiCad boards from board definitions",
	Long: `pcbgen turns board definitions (.board or .yaml) into KiCad files:
  - .kicad_pcb boards with placed footprints and pad nets
  - KiCad and JSON netlists
  - placement plots

Examples:
  pcbgen check power.board                  # Validate a definition
  pcbgen build boards/**/*.board -o build   # Build every definition
  pcbgen build power.board --watch          # Rebuild on change
  pcbgen nets build/power.kicad_pcb vin     # Inspect a written board
  pcbgen view build/power.kicad_pcb         # Open the board viewer`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.err.Render("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default pcbgen.toml, or $"+config.EnvConfig+")")
}

// setup resolves configuration and the logger before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	c, path, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	cfg = c

	logger = shared.NewLogger(os.Stderr)
	level, err := shared.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = log.DebugLevel
	}
	shared.SetLogLevel(logger, level)

	if path != "" {
		logger.Debug("config loaded", "path", path)
	}
	return nil
}
