package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
)

// SQLiteStore implements Store on a local SQLite database. It backs the
// reference server and doubles as an offline data source for the CLI.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_store"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return s, nil
}

// initialize creates the schema.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        completed INTEGER NOT NULL DEFAULT 0,
        position INTEGER NOT NULL,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// GetAll returns tasks in insertion order.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, title, completed, created_at, updated_at
        FROM tasks
        ORDER BY position ASC
    `)
	if err != nil {
		return nil, models.WrapTransport(fmt.Errorf("query tasks: %w", err), 0)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, models.WrapTransport(fmt.Errorf("scan task: %w", err), 0)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapTransport(fmt.Errorf("iterate tasks: %w", err), 0)
	}

	return tasks, nil
}

// Get returns a single task.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `
        SELECT id, title, completed, created_at, updated_at
        FROM tasks
        WHERE id = ?
    `, id).Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, models.WrapTransport(fmt.Errorf("query task: %w", err), 0)
	}

	return &t, nil
}

// Create inserts a task at the tail of the collection.
func (s *SQLiteStore) Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := models.ValidateTitle(title); err != nil {
		return nil, models.WrapTransport(err, http.StatusBadRequest)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO tasks (id, title, completed, position, created_at, updated_at)
        VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?, ?)
    `, task.ID, task.Title, task.Completed, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, models.WrapTransport(fmt.Errorf("insert task: %w", err), 0)
	}

	s.logger.WithField("task_id", task.ID).Debug("Created task")
	return task, nil
}

// Update applies a partial patch.
func (s *SQLiteStore) Update(ctx context.Context, id string, patch models.UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := models.ValidateTitle(title); err != nil {
			return nil, models.WrapTransport(err, http.StatusBadRequest)
		}
		task.Title = title
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.Touch()

	res, err := s.db.ExecContext(ctx, `
        UPDATE tasks SET title = ?, completed = ?, updated_at = ?
        WHERE id = ?
    `, task.Title, task.Completed, task.UpdatedAt, id)
	if err != nil {
		return nil, models.WrapTransport(fmt.Errorf("update task: %w", err), 0)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
	}

	return task, nil
}

// Delete removes a task.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return models.WrapTransport(fmt.Errorf("delete task: %w", err), 0)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.WrapTransport(models.ErrTaskNotFound, http.StatusNotFound)
	}

	s.logger.WithField("task_id", id).Debug("Deleted task")
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
