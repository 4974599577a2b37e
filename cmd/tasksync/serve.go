package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tobiasgrant/tasksync/internal/server"
	"github.com/tobiasgrant/tasksync/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task server",
	Long: `Serve runs the reference task API backed by SQLite, including the
WebSocket snapshot stream that client sessions subscribe to.`,
	Example: `  tasksync serve
  tasksync serve --addr :9000 --db ./tasks.db`,
	RunE: runServe,
}

var (
	serveAddr string
	serveDB   string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "",
		"SQLite database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDB != "" {
		cfg.Server.DBPath = serveDB
	}

	st, err := store.NewSQLiteStore(cfg.Server.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(&cfg.Server, st, logger)
	return srv.ListenAndServe(ctx)
}
