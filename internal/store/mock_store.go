package store

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tobiasgrant/tasksync/internal/models"
)

// MockStore provides an in-memory Store for testing. Failures are injected
// per operation, and an optional gate channel holds calls in flight so tests
// can observe intermediate engine state.
type MockStore struct {
	mu    sync.Mutex
	tasks []models.Task
	next  int

	// Error injection (returned as-is; use TransportError values)
	GetAllError error
	GetError    error
	CreateError error
	UpdateError error
	DeleteError error

	// Gate, when set, blocks every call until it is closed or receives.
	Gate chan struct{}

	// Call tracking
	GetAllCalls int
	CreateCalls []models.CreateTaskInput
	UpdateCalls []UpdateCall
	DeleteCalls []string
}

// UpdateCall records one Update invocation.
type UpdateCall struct {
	ID    string
	Patch models.UpdateTaskInput
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Seed replaces the mock's contents (for test setup).
func (m *MockStore) Seed(tasks []models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]models.Task(nil), tasks...)
}

// Tasks returns a copy of the current contents.
func (m *MockStore) Tasks() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task(nil), m.tasks...)
}

func (m *MockStore) wait(ctx context.Context) error {
	m.mu.Lock()
	gate := m.Gate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return models.WrapTransport(ctx.Err(), 0)
	}
}

// GetAll returns the seeded tasks.
func (m *MockStore) GetAll(ctx context.Context) ([]models.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetAllCalls++
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	return append([]models.Task(nil), m.tasks...), nil
}

// Get returns a task by id.
func (m *MockStore) Get(ctx context.Context, id string) (*models.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return m.tasks[i].Clone(), nil
		}
	}
	return nil, models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
}

// Create appends a task with a generated id.
func (m *MockStore) Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, input)
	if m.CreateError != nil {
		return nil, m.CreateError
	}

	m.next++
	now := time.Now().UTC()
	task := models.Task{
		ID:        fmt.Sprintf("mock-%d", m.next),
		Title:     input.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.tasks = append(m.tasks, task)
	return task.Clone(), nil
}

// Update patches a task by id.
func (m *MockStore) Update(ctx context.Context, id string, patch models.UpdateTaskInput) (*models.Task, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Patch: patch})
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}

	for i := range m.tasks {
		if m.tasks[i].ID == id {
			if patch.Title != nil {
				m.tasks[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				m.tasks[i].Completed = *patch.Completed
			}
			m.tasks[i].Touch()
			return m.tasks[i].Clone(), nil
		}
	}
	return nil, models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
}

// Delete removes a task by id.
func (m *MockStore) Delete(ctx context.Context, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}

	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
