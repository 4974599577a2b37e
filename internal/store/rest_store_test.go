package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/store"
	"github.com/tobiasgrant/tasksync/internal/transport"
)

func TestRESTStore(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get all", func(t *testing.T) {
		mock := transport.NewMockTransport()
		mock.Responses["GET /api/tasks"] = []models.Task{
			{ID: "1", Title: "Buy milk", CreatedAt: at, UpdatedAt: at},
			{ID: "2", Title: "Water plants", Completed: true, CreatedAt: at, UpdatedAt: at},
		}

		st := store.NewRESTStore(mock, events.NewNopLogger())
		tasks, err := st.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Buy milk", tasks[0].Title)
		assert.True(t, tasks[1].Completed)
	})

	t.Run("create posts the input", func(t *testing.T) {
		mock := transport.NewMockTransport()
		mock.Responses["POST /api/tasks"] = models.Task{ID: "42", Title: "New task", CreatedAt: at, UpdatedAt: at}

		st := store.NewRESTStore(mock, events.NewNopLogger())
		task, err := st.Create(ctx, models.CreateTaskInput{Title: "New task"})
		require.NoError(t, err)
		assert.Equal(t, "42", task.ID)

		require.Len(t, mock.Requests, 1)
		assert.Equal(t, "POST", mock.Requests[0].Method)
		input, ok := mock.Requests[0].Payload.(models.CreateTaskInput)
		require.True(t, ok)
		assert.Equal(t, "New task", input.Title)
	})

	t.Run("update patches by id", func(t *testing.T) {
		mock := transport.NewMockTransport()
		mock.Responses["PATCH /api/tasks/1"] = models.Task{ID: "1", Title: "Buy milk", Completed: true, CreatedAt: at, UpdatedAt: at}

		st := store.NewRESTStore(mock, events.NewNopLogger())
		completed := true
		task, err := st.Update(ctx, "1", models.UpdateTaskInput{Completed: &completed})
		require.NoError(t, err)
		assert.True(t, task.Completed)
	})

	t.Run("delete", func(t *testing.T) {
		mock := transport.NewMockTransport()
		mock.Responses["DELETE /api/tasks/1"] = nil

		st := store.NewRESTStore(mock, events.NewNopLogger())
		require.NoError(t, st.Delete(ctx, "1"))
	})

	t.Run("transport errors pass through unchanged", func(t *testing.T) {
		mock := transport.NewMockTransport()
		mock.Errors["GET /api/tasks"] = models.NewTransportError("500 Internal Server Error", 500)

		st := store.NewRESTStore(mock, events.NewNopLogger())
		_, err := st.GetAll(ctx)
		require.Error(t, err)

		var terr *models.TransportError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, "500 Internal Server Error", terr.Message)
		assert.Equal(t, 500, terr.StatusCode)
	})

	t.Run("ids are path escaped", func(t *testing.T) {
		mock := transport.NewMockTransport()
		st := store.NewRESTStore(mock, events.NewNopLogger())

		_ = st.Delete(ctx, "a/b")
		require.Len(t, mock.Requests, 1)
		assert.Equal(t, "/api/tasks/a%2Fb", mock.Requests[0].Path)
	})
}
