package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/transport"
)

// RESTStore implements Store against the task API over HTTP.
type RESTStore struct {
	transport transport.Transport
	logger    *events.Logger
}

// NewRESTStore creates a REST-backed store.
func NewRESTStore(t transport.Transport, logger *events.Logger) *RESTStore {
	return &RESTStore{
		transport: t,
		logger:    logger.WithField("component", "rest_store"),
	}
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// GetAll fetches the full collection.
func (s *RESTStore) GetAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.transport.GetJSON(ctx, "/api/tasks", &tasks); err != nil {
		return nil, models.WrapTransport(fmt.Errorf("fetch tasks: %w", err), 0)
	}
	return tasks, nil
}

// Get fetches a single task.
func (s *RESTStore) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.transport.GetJSON(ctx, taskPath(id), &task); err != nil {
		return nil, models.WrapTransport(fmt.Errorf("fetch task %s: %w", id, err), 0)
	}
	return &task, nil
}

// Create posts a new task; the server assigns id and timestamps.
func (s *RESTStore) Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := s.transport.PostJSON(ctx, "/api/tasks", input, &task); err != nil {
		return nil, models.WrapTransport(fmt.Errorf("create task: %w", err), 0)
	}
	return &task, nil
}

// Update patches a task.
func (s *RESTStore) Update(ctx context.Context, id string, patch models.UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := s.transport.PatchJSON(ctx, taskPath(id), patch, &task); err != nil {
		return nil, models.WrapTransport(fmt.Errorf("update task %s: %w", id, err), 0)
	}
	return &task, nil
}

// Delete removes a task.
func (s *RESTStore) Delete(ctx context.Context, id string) error {
	if err := s.transport.Delete(ctx, taskPath(id)); err != nil {
		return models.WrapTransport(fmt.Errorf("delete task %s: %w", id, err), 0)
	}
	return nil
}

// Close is a no-op; the transport owns the connections.
func (s *RESTStore) Close() error {
	return nil
}
