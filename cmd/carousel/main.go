package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/carousel/internal/logging"
)

// defaultTUILog receives log output while the full-screen player owns the
// terminal and no --log-file was given.
const defaultTUILog = "carousel.log"

var (
	verbose bool
	logFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Play, check and export auto-advancing case-study carousels",
	Long: `carousel plays deck files: named sections of image or text slides, each
shown in its own carousel that advances every few seconds and slides left or
right depending on the direction of travel.

Decks are TOML or YAML. Run "carousel validate DECK" to check one.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file := logFile
		if file == "" && cmd.Name() == playCmd.Name() && !playPlain {
			file = defaultTUILog
		}
		var err error
		logger, err = logging.New(logging.Options{Verbose: verbose, File: file})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (play defaults to "+defaultTUILog+")")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
