package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/config"
	"github.com/tobiasgrant/tasksync/internal/events"
)

var rootCmd = &cobra.Command{
	Use:   "tasksync",
	Short: "Task list with a reactive sync engine",
	Long: `Tasksync keeps a task collection in sync between a server and
long-lived client sessions. Toggles apply optimistically and roll back on
failure; server-side changes stream back to every session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *events.Logger
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: ./tasksync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("config error: %v", err))
		os.Exit(1)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	logger = events.NewLogger(&cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		return err
	}
	return nil
}
