package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/client"
	"github.com/tobiasgrant/tasksync/internal/models"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completed flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

func init() {
	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := client.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	task, err := c.Store.Get(ctx, args[0])
	if err != nil {
		return err
	}

	completed := !task.Completed
	task, err = c.Store.Update(ctx, task.ID, models.UpdateTaskInput{Completed: &completed})
	if err != nil {
		return err
	}

	state := "pending"
	if task.Completed {
		state = "completed"
	}
	fmt.Printf("%s is now %s\n", task.Title, state)
	return nil
}
