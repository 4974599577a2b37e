package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/services/tasks"
	"github.com/tobiasgrant/tasksync/internal/store"
)

func testTask(id, title string, completed bool) models.Task {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Task{
		ID:        id,
		Title:     title,
		Completed: completed,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newEngine(t *testing.T, seed []models.Task) (*tasks.Engine, *store.MockStore) {
	t.Helper()
	mock := store.NewMockStore()
	mock.Seed(seed)
	engine := tasks.NewEngine(mock, seed, events.NewNopLogger())
	return engine, mock
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces items wholesale", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Old task", false)})
		mock.Seed([]models.Task{
			testTask("2", "Fresh one", false),
			testTask("3", "Fresh two", true),
		})

		engine.Load(ctx)

		items := engine.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "2", items[0].ID)
		assert.Equal(t, "3", items[1].ID)
		assert.False(t, engine.Loading())
		assert.Empty(t, engine.Err())
	})

	t.Run("failure keeps stale items and sets error", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Stale task", false)})
		mock.GetAllError = models.NewTransportError("connection refused", 0)

		engine.Load(ctx)

		items := engine.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, "connection refused", engine.Err())
		assert.False(t, engine.Loading())
	})

	t.Run("clears previous error at start", func(t *testing.T) {
		engine, mock := newEngine(t, nil)
		mock.GetAllError = models.NewTransportError("boom", 500)
		engine.Load(ctx)
		require.Equal(t, "boom", engine.Err())

		mock.GetAllError = nil
		engine.Load(ctx)
		assert.Empty(t, engine.Err())
	})

	t.Run("loading flag brackets the call", func(t *testing.T) {
		engine, mock := newEngine(t, nil)
		mock.Gate = make(chan struct{})

		require.False(t, engine.Loading())

		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Load(ctx)
		}()

		require.Eventually(t, engine.Loading, time.Second, time.Millisecond)

		close(mock.Gate)
		<-done
		assert.False(t, engine.Loading())
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends the confirmed record at the tail", func(t *testing.T) {
		engine, _ := newEngine(t, []models.Task{testTask("1", "Existing", false)})

		engine.Create(ctx, models.CreateTaskInput{Title: "New task"})

		items := engine.Items()
		require.Len(t, items, 2)
		created := items[1]
		assert.Equal(t, "mock-1", created.ID)
		assert.Equal(t, "New task", created.Title)
		assert.False(t, created.Completed)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Empty(t, engine.Err())
	})

	t.Run("failure leaves items unchanged", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Existing", false)})
		mock.CreateError = models.NewTransportError("title must be at least 2 characters", 400)

		engine.Create(ctx, models.CreateTaskInput{Title: "x"})

		assert.Len(t, engine.Items(), 1)
		assert.Equal(t, "title must be at least 2 characters", engine.Err())
		assert.False(t, engine.Loading())
	})

	t.Run("loading flag brackets the call on failure too", func(t *testing.T) {
		engine, mock := newEngine(t, nil)
		mock.CreateError = models.NewTransportError("boom", 500)
		mock.Gate = make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Create(ctx, models.CreateTaskInput{Title: "Doomed"})
		}()

		require.Eventually(t, engine.Loading, time.Second, time.Millisecond)

		close(mock.Gate)
		<-done
		assert.False(t, engine.Loading())
		assert.Equal(t, "boom", engine.Err())
	})
}

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("optimistic flip is visible before the store confirms", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Buy milk", false)})
		mock.Gate = make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Toggle(ctx, "1")
		}()

		require.Eventually(t, func() bool {
			return engine.Items()[0].Completed
		}, time.Second, time.Millisecond)

		// Toggle never owns the loading slot.
		assert.False(t, engine.Loading())

		close(mock.Gate)
		<-done
		assert.True(t, engine.Items()[0].Completed)
		assert.Empty(t, engine.Err())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Buy milk", false)})
		mock.UpdateError = models.NewTransportError("500 Internal Server Error", 500)
		mock.Gate = make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Toggle(ctx, "1")
		}()

		// Optimistic value first.
		require.Eventually(t, func() bool {
			return engine.Items()[0].Completed
		}, time.Second, time.Millisecond)

		close(mock.Gate)
		<-done

		assert.False(t, engine.Items()[0].Completed)
		assert.Equal(t, "500 Internal Server Error", engine.Err())
	})

	t.Run("sends the flipped value to the store", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Buy milk", true)})

		engine.Toggle(ctx, "1")

		require.Len(t, mock.UpdateCalls, 1)
		call := mock.UpdateCalls[0]
		assert.Equal(t, "1", call.ID)
		require.NotNil(t, call.Patch.Completed)
		assert.False(t, *call.Patch.Completed)
		assert.Nil(t, call.Patch.Title)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Buy milk", false)})
		before := engine.Version()

		engine.Toggle(ctx, "missing")

		assert.Empty(t, mock.UpdateCalls)
		assert.Empty(t, engine.Err())
		assert.Equal(t, before, engine.Version())
	})

	t.Run("does not clear a previous error on start", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "Buy milk", false)})

		// Surface an error first.
		mock.DeleteError = models.NewTransportError("delete exploded", 500)
		engine.Delete(ctx, "1")
		require.Equal(t, "delete exploded", engine.Err())

		// A successful toggle leaves it in place.
		engine.Toggle(ctx, "1")
		assert.Equal(t, "delete exploded", engine.Err())
		assert.True(t, engine.Items()[0].Completed)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes exactly one record", func(t *testing.T) {
		engine, _ := newEngine(t, []models.Task{
			testTask("1", "First", false),
			testTask("2", "Second", true),
			testTask("3", "Third", false),
		})

		engine.Delete(ctx, "2")

		items := engine.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, "3", items[1].ID)
		assert.Empty(t, engine.Err())
	})

	t.Run("missing id fails at the store and keeps items", func(t *testing.T) {
		engine, _ := newEngine(t, []models.Task{testTask("1", "First", false)})

		engine.Delete(ctx, "missing")

		assert.Len(t, engine.Items(), 1)
		assert.Equal(t, models.ErrTaskNotFound.Error(), engine.Err())
	})

	t.Run("loading flag brackets the call", func(t *testing.T) {
		engine, mock := newEngine(t, []models.Task{testTask("1", "First", false)})
		mock.Gate = make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Delete(ctx, "1")
		}()

		require.Eventually(t, engine.Loading, time.Second, time.Millisecond)

		close(mock.Gate)
		<-done
		assert.False(t, engine.Loading())
	})
}

func TestSelection(t *testing.T) {
	engine, _ := newEngine(t, []models.Task{
		testTask("1", "First", false),
		testTask("2", "Second", false),
	})

	t.Run("select and resolve", func(t *testing.T) {
		engine.Select("2")
		item, ok := engine.SelectedItem()
		require.True(t, ok)
		assert.Equal(t, "Second", item.Title)
	})

	t.Run("dangling selection reads as nothing selected", func(t *testing.T) {
		engine.Select("gone")
		_, ok := engine.SelectedItem()
		assert.False(t, ok)
		assert.Equal(t, "gone", engine.SelectedID())
	})

	t.Run("clear selection", func(t *testing.T) {
		engine.Select("1")
		engine.ClearSelection()
		_, ok := engine.SelectedItem()
		assert.False(t, ok)
		assert.Empty(t, engine.SelectedID())
	})
}

func TestDerivedCounts(t *testing.T) {
	cases := []struct {
		name      string
		seed      []models.Task
		completed int
	}{
		{"empty", nil, 0},
		{"all pending", []models.Task{testTask("1", "A task", false), testTask("2", "B task", false)}, 0},
		{"mixed", []models.Task{testTask("1", "A task", true), testTask("2", "B task", false), testTask("3", "C task", true)}, 2},
		{"all completed", []models.Task{testTask("1", "A task", true)}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _ := newEngine(t, tc.seed)
			assert.Equal(t, tc.completed, engine.CompletedCount())
			assert.Equal(t, len(tc.seed)-tc.completed, engine.PendingCount())
			assert.Equal(t, len(tc.seed), engine.CompletedCount()+engine.PendingCount())
		})
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	engine, _ := newEngine(t, nil)

	var changes []tasks.Change
	engine.Subscribe(func(c tasks.Change) {
		changes = append(changes, c)
	})

	engine.Load(ctx)

	require.Len(t, changes, 2)
	assert.Equal(t, tasks.ChangeLoading, changes[0].Type)
	assert.Equal(t, tasks.ChangeLoaded, changes[1].Type)
	assert.Equal(t, uint64(1), changes[0].Version)
	assert.Equal(t, uint64(2), changes[1].Version)
}
