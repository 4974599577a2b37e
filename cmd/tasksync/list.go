package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/client"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the task list",
	RunE:  runList,
}

var listAll bool

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listAll, "all", "a", true,
		"Include completed tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := client.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	tasks, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
			if !listAll {
				continue
			}
			fmt.Printf("%s %s  %s\n", color.GreenString("✔"), t.Title, color.HiBlackString(t.ID))
			continue
		}
		fmt.Printf("%s %s  %s\n", color.YellowString("•"), t.Title, color.HiBlackString(t.ID))
	}

	fmt.Printf("\n%d tasks, %d completed\n", len(tasks), done)
	return nil
}
