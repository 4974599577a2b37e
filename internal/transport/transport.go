package transport

import (
	"context"

	"github.com/tobiasgrant/tasksync/internal/config"
	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
)

// Transport combines the JSON HTTP methods with the snapshot stream.
type Transport interface {
	// HTTP methods
	GetJSON(ctx context.Context, path string, out interface{}) error
	PostJSON(ctx context.Context, path string, payload, out interface{}) error
	PatchJSON(ctx context.Context, path string, payload, out interface{}) error
	Delete(ctx context.Context, path string) error

	// StreamSnapshots subscribes to the server's collection snapshots.
	// The channel closes when the connection drops or ctx is cancelled.
	StreamSnapshots(ctx context.Context) (<-chan []models.Task, error)

	// Lifecycle
	Close() error
}

// DefaultTransport implements the Transport interface.
type DefaultTransport struct {
	httpClient *HTTPClient
	wsClient   *WSClient
	logger     *events.Logger
}

// NewTransport creates a transport instance.
func NewTransport(cfg *config.APIConfig, logger *events.Logger) Transport {
	return &DefaultTransport{
		httpClient: NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetJSON forwards to the HTTP client.
func (t *DefaultTransport) GetJSON(ctx context.Context, path string, out interface{}) error {
	return t.httpClient.DoJSON(ctx, "GET", path, nil, out)
}

// PostJSON forwards to the HTTP client.
func (t *DefaultTransport) PostJSON(ctx context.Context, path string, payload, out interface{}) error {
	return t.httpClient.DoJSON(ctx, "POST", path, payload, out)
}

// PatchJSON forwards to the HTTP client.
func (t *DefaultTransport) PatchJSON(ctx context.Context, path string, payload, out interface{}) error {
	return t.httpClient.DoJSON(ctx, "PATCH", path, payload, out)
}

// Delete forwards to the HTTP client.
func (t *DefaultTransport) Delete(ctx context.Context, path string) error {
	return t.httpClient.DoJSON(ctx, "DELETE", path, nil, nil)
}

// StreamSnapshots opens a WebSocket snapshot stream.
func (t *DefaultTransport) StreamSnapshots(ctx context.Context) (<-chan []models.Task, error) {
	t.wsClient = NewWSClient(t.httpClient.baseURL, t.logger)

	if err := t.wsClient.Connect(ctx); err != nil {
		return nil, err
	}

	// Surface read errors through the log; the stream itself just ends.
	go func() {
		for err := range t.wsClient.Errors() {
			t.logger.WithError(err).Error("Snapshot stream error")
		}
	}()

	return t.wsClient.Snapshots(), nil
}

// Close closes all connections.
func (t *DefaultTransport) Close() error {
	if t.wsClient != nil {
		return t.wsClient.Close()
	}
	return nil
}
