package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/client"
	"github.com/tobiasgrant/tasksync/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive task list",
	Long: `UI starts a long-lived session: the engine loads the collection,
the snapshot stream keeps it fresh, and every keypress goes through the
engine's optimistic mutations.`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := client.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	// Server-pushed snapshots keep flowing while the UI runs.
	go func() {
		if err := c.RunBridge(ctx); err != nil {
			logger.WithError(err).Warn("Snapshot stream unavailable")
		}
	}()

	program := tea.NewProgram(tui.New(ctx, c.Engine), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
