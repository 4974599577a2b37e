package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/client"
	"github.com/tobiasgrant/tasksync/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Example: `  tasksync add "Buy milk"
  tasksync add Water the plants`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	title := strings.Join(args, " ")

	c, err := client.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	task, err := c.Store.Create(ctx, models.CreateTaskInput{Title: title})
	if err != nil {
		return err
	}

	fmt.Printf("created %s (%s)\n", task.Title, task.ID)
	return nil
}
