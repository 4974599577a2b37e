package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
)

// WSClient consumes the server's snapshot stream. Each message on the wire
// is the full ordered task collection; the client does no merging.
type WSClient struct {
	url    string
	logger *events.Logger

	// Connection state
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	// Channels
	snapshots chan []models.Task
	errors    chan error
	done      chan struct{}

	pingInterval time.Duration
}

// NewWSClient creates a snapshot stream client for the given API base URL.
func NewWSClient(baseURL string, logger *events.Logger) *WSClient {
	wsURL := baseURL
	if len(wsURL) > 4 && wsURL[:4] == "http" {
		wsURL = "ws" + wsURL[4:]
	}

	return &WSClient{
		url:          wsURL + "/api/tasks/ws",
		logger:       logger.WithField("component", "ws_client"),
		snapshots:    make(chan []models.Task, 16),
		errors:       make(chan error, 4),
		done:         make(chan struct{}),
		pingInterval: 30 * time.Second,
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
func (c *WSClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	c.logger.WithField("url", c.url).Info("Connecting to snapshot stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connect failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connect failed: %w", err)
	}

	c.conn = conn
	c.closed = false

	go c.readLoop(ctx)
	go c.pingLoop()

	c.logger.Info("Snapshot stream connected")
	return nil
}

// Snapshots returns the snapshot channel.
func (c *WSClient) Snapshots() <-chan []models.Task {
	return c.snapshots
}

// Errors returns the error channel.
func (c *WSClient) Errors() <-chan error {
	return c.errors
}

// Close closes the connection and all channels.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return c.conn.Close()
	}
	return nil
}

// readLoop decodes snapshot frames until the connection ends.
func (c *WSClient) readLoop(ctx context.Context) {
	defer close(c.snapshots)
	defer close(c.errors)

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			_ = c.Close()
			return
		default:
		}

		var snapshot []models.Task
		if err := c.conn.ReadJSON(&snapshot); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.errors <- fmt.Errorf("read snapshot: %w", err)
			}
			return
		}

		c.logger.WithField("count", len(snapshot)).Debug("Received snapshot")

		select {
		case c.snapshots <- snapshot:
		case <-c.done:
			return
		}
	}
}

// pingLoop keeps the connection alive.
func (c *WSClient) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			conn := c.conn
			closed := c.closed
			c.mu.Unlock()

			if closed || conn == nil {
				return
			}

			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.WithError(err).Debug("Ping failed")
				return
			}
		}
	}
}
