package store

import (
	"context"

	"github.com/tobiasgrant/tasksync/internal/models"
)

// Store is the data source the sync engine talks to. Implementations exist
// for the REST API, a local SQLite database, and an in-memory test double.
//
// Every method that fails does so with a *models.TransportError; callers
// may rely on that shape and nothing else.
type Store interface {
	// GetAll returns every task in collection order.
	GetAll(ctx context.Context) ([]models.Task, error)

	// Get returns a single task by id.
	Get(ctx context.Context, id string) (*models.Task, error)

	// Create inserts a new task. The store assigns id and timestamps.
	Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error)

	// Update applies a partial patch and returns the updated task.
	Update(ctx context.Context, id string, patch models.UpdateTaskInput) (*models.Task, error)

	// Delete removes a task by id.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
