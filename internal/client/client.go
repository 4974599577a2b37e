package client

import (
	"context"

	"github.com/tobiasgrant/tasksync/internal/config"
	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/services/tasks"
	"github.com/tobiasgrant/tasksync/internal/store"
	"github.com/tobiasgrant/tasksync/internal/transport"
)

// Client composes the transport, store, engine, and bridge for one session.
// Construction is explicit: every collaborator is built here and passed
// down, nothing is looked up from ambient state.
type Client struct {
	Engine *tasks.Engine
	Bridge *tasks.Bridge
	Store  store.Store

	config    *config.Config
	logger    *events.Logger
	transport transport.Transport
}

// New creates a client session against the configured API. The engine
// starts from the server's current snapshot.
func New(ctx context.Context, cfg *config.Config, logger *events.Logger) (*Client, error) {
	transportClient := transport.NewTransport(&cfg.API, logger)
	restStore := store.NewRESTStore(transportClient, logger)

	initial, err := restStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	engine := tasks.NewEngine(restStore, initial, logger)
	bridge := tasks.NewBridge(engine, initial, logger)

	return &Client{
		Engine:    engine,
		Bridge:    bridge,
		Store:     restStore,
		config:    cfg,
		logger:    logger,
		transport: transportClient,
	}, nil
}

// RunBridge subscribes to the server's snapshot stream and feeds it into
// the bridge until ctx is cancelled. It returns when the stream ends.
func (c *Client) RunBridge(ctx context.Context) error {
	snapshots, err := c.transport.StreamSnapshots(ctx)
	if err != nil {
		return err
	}
	c.Bridge.Run(ctx, snapshots)
	return nil
}

// Snapshot fetches the current server collection without touching the
// engine (for one-shot CLI commands).
func (c *Client) Snapshot(ctx context.Context) ([]models.Task, error) {
	return c.Store.GetAll(ctx)
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
