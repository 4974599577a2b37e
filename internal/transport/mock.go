package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tobiasgrant/tasksync/internal/models"
)

// MockTransport provides a mock implementation for testing.
type MockTransport struct {
	mu sync.Mutex

	// Response configuration, keyed by "METHOD path"
	Responses map[string]interface{}

	// Error injection, keyed by "METHOD path" (checked before Responses)
	Errors map[string]error

	// Snapshots to replay from StreamSnapshots
	StreamFrames [][]models.Task
	StreamError  error

	// Request tracking
	Requests []Request

	closed bool
}

// Request tracks one transport call.
type Request struct {
	Method  string
	Path    string
	Payload interface{}
}

// NewMockTransport creates a mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		Responses: make(map[string]interface{}),
		Errors:    make(map[string]error),
	}
}

func (m *MockTransport) call(method, path string, payload, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, Request{Method: method, Path: path, Payload: payload})

	key := method + " " + path
	if err, ok := m.Errors[key]; ok {
		return err
	}

	resp, ok := m.Responses[key]
	if !ok {
		return models.NewTransportError(fmt.Sprintf("no mock response for %s", key), 404)
	}
	if out == nil || resp == nil {
		return nil
	}

	// Round-trip through JSON so fixtures can be any compatible shape.
	data, err := json.Marshal(resp)
	if err != nil {
		return models.WrapTransport(err, 0)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return models.WrapTransport(err, 0)
	}
	return nil
}

// GetJSON mocks a GET request.
func (m *MockTransport) GetJSON(ctx context.Context, path string, out interface{}) error {
	return m.call("GET", path, nil, out)
}

// PostJSON mocks a POST request.
func (m *MockTransport) PostJSON(ctx context.Context, path string, payload, out interface{}) error {
	return m.call("POST", path, payload, out)
}

// PatchJSON mocks a PATCH request.
func (m *MockTransport) PatchJSON(ctx context.Context, path string, payload, out interface{}) error {
	return m.call("PATCH", path, payload, out)
}

// Delete mocks a DELETE request.
func (m *MockTransport) Delete(ctx context.Context, path string) error {
	return m.call("DELETE", path, nil, nil)
}

// StreamSnapshots replays the configured frames.
func (m *MockTransport) StreamSnapshots(ctx context.Context) (<-chan []models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StreamError != nil {
		return nil, m.StreamError
	}

	ch := make(chan []models.Task, len(m.StreamFrames))
	for _, frame := range m.StreamFrames {
		ch <- frame
	}
	close(ch)
	return ch, nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
