package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/client"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := client.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Store.Delete(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", args[0])
	return nil
}
