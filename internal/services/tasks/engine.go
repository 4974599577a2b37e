package tasks

import (
	"context"
	"sync"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/store"
)

// ChangeType identifies what mutated in the engine state.
type ChangeType string

const (
	ChangeLoading   ChangeType = "loading"
	ChangeLoaded    ChangeType = "loaded"
	ChangeCreated   ChangeType = "created"
	ChangeToggled   ChangeType = "toggled"
	ChangeDeleted   ChangeType = "deleted"
	ChangeReplaced  ChangeType = "replaced"
	ChangeSelection ChangeType = "selection"
	ChangeError     ChangeType = "error"
)

// Change is delivered to subscribers after every state mutation. Version
// increases monotonically; a subscriber that re-reads the engine on every
// change never misses a state.
type Change struct {
	Type    ChangeType
	Version uint64
}

// Engine owns the in-session task collection and reconciles it with a
// Store. It is the single mutable resource of a UI session: the collection,
// the loading flag, the last error, and the selection all live here.
//
// Store failures never escape an operation; they surface only through the
// error field. Load, Create, and Delete bracket themselves with the loading
// flag. Toggle is optimistic: the flip is visible before the store call and
// reverted on failure, and it deliberately leaves the loading flag alone so
// rapid toggling never blocks the rest of the UI.
type Engine struct {
	store  store.Store
	logger *events.Logger

	mu         sync.Mutex
	items      []*models.Task
	loading    bool
	lastErr    string
	selectedID string
	version    uint64
	subs       []func(Change)
}

// NewEngine creates an engine seeded with an initial snapshot (which may be
// nil for an empty session).
func NewEngine(st store.Store, initial []models.Task, logger *events.Logger) *Engine {
	return &Engine{
		store:  st,
		logger: logger.WithField("component", "task_engine"),
		items:  clonePointers(initial),
	}
}

func clonePointers(tasks []models.Task) []*models.Task {
	items := make([]*models.Task, len(tasks))
	for i := range tasks {
		items[i] = tasks[i].Clone()
	}
	return items
}

// Subscribe registers fn to run synchronously after every state change.
// Subscribers must not call back into the engine.
func (e *Engine) Subscribe(fn func(Change)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// notifyLocked bumps the version and informs subscribers. Callers hold e.mu.
func (e *Engine) notifyLocked(t ChangeType) {
	e.version++
	change := Change{Type: t, Version: e.version}
	for _, fn := range e.subs {
		fn(change)
	}
}

// Items returns the current collection. The slice is a copy; the records
// are shared, so an in-flight toggle is visible on them.
func (e *Engine) Items() []*models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*models.Task(nil), e.items...)
}

// Loading reports whether a load, create, or delete is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the message of the most recent failed operation, or "" when
// no unresolved error exists.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Version returns the current state version.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// SelectedID returns the current selection key, which may dangle.
func (e *Engine) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// SelectedItem resolves the selection against the collection. A dangling
// selection reads as nothing selected.
func (e *Engine) SelectedItem() (*models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectedID == "" {
		return nil, false
	}
	for _, t := range e.items {
		if t.ID == e.selectedID {
			return t, true
		}
	}
	return nil, false
}

// CompletedCount counts completed tasks.
func (e *Engine) CompletedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.items {
		if t.Completed {
			n++
		}
	}
	return n
}

// PendingCount counts tasks not yet completed.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.items {
		if !t.Completed {
			n++
		}
	}
	return n
}

// begin marks a primary operation in flight: loading on, stale error cleared.
func (e *Engine) begin() {
	e.mu.Lock()
	e.loading = true
	e.lastErr = ""
	e.notifyLocked(ChangeLoading)
	e.mu.Unlock()
}

// Load replaces the collection with the store's contents. On failure the
// previous (stale) collection stays visible and the error field is set.
func (e *Engine) Load(ctx context.Context) {
	e.begin()

	tasks, err := e.store.GetAll(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = models.ErrorMessage(err)
		e.logger.WithError(err).Warn("Load failed")
		e.notifyLocked(ChangeError)
		return
	}
	e.items = clonePointers(tasks)
	e.notifyLocked(ChangeLoaded)
}

// Create asks the store for a new record and appends the confirmed result.
// The record does not exist locally until the store has assigned its id, so
// there is nothing optimistic here.
func (e *Engine) Create(ctx context.Context, input models.CreateTaskInput) {
	e.begin()

	task, err := e.store.Create(ctx, input)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = models.ErrorMessage(err)
		e.logger.WithError(err).Warn("Create failed")
		e.notifyLocked(ChangeError)
		return
	}
	e.items = append(e.items, task)
	e.notifyLocked(ChangeCreated)
}

// Toggle optimistically flips a task's completed flag, then confirms with
// the store. On failure the same record is flipped back and the error field
// is set. Unknown ids are a silent no-op: the UI cannot have rendered a
// control for a record that is not in the collection.
//
// Toggle never touches the loading flag, and unlike the primary operations
// it does not clear a pre-existing error at its start; it only sets the
// error on its own failure.
func (e *Engine) Toggle(ctx context.Context, id string) {
	e.mu.Lock()
	var task *models.Task
	for _, t := range e.items {
		if t.ID == id {
			task = t
			break
		}
	}
	if task == nil {
		e.mu.Unlock()
		return
	}

	previous := task.Completed
	next := !previous
	task.Completed = next
	e.notifyLocked(ChangeToggled)
	e.mu.Unlock()

	_, err := e.store.Update(ctx, id, models.UpdateTaskInput{Completed: &next})
	if err == nil {
		// The optimistic value already matches the server. The returned
		// record is not re-applied; fields like UpdatedAt stay stale
		// until the next Load.
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	task.Completed = previous
	e.lastErr = models.ErrorMessage(err)
	e.logger.WithError(err).WithField("task_id", id).Warn("Toggle failed, rolled back")
	e.notifyLocked(ChangeError)
}

// Delete removes a task after the store confirms. Removal is not
// optimistic; a deleted row flashing back on failure reads worse than a
// short wait.
func (e *Engine) Delete(ctx context.Context, id string) {
	e.begin()

	err := e.store.Delete(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = models.ErrorMessage(err)
		e.logger.WithError(err).WithField("task_id", id).Warn("Delete failed")
		e.notifyLocked(ChangeError)
		return
	}
	for i, t := range e.items {
		if t.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			break
		}
	}
	e.notifyLocked(ChangeDeleted)
}

// Select sets the selection key. No validation: selecting an id that later
// disappears simply dangles.
func (e *Engine) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = id
	e.notifyLocked(ChangeSelection)
}

// ClearSelection drops the selection.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = ""
	e.notifyLocked(ChangeSelection)
}

// replaceAll swaps in an external snapshot wholesale. Loading, error, and
// selection are deliberately untouched. Used by the Bridge.
func (e *Engine) replaceAll(snapshot []models.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = clonePointers(snapshot)
	e.notifyLocked(ChangeReplaced)
}

// snapshotEquals compares the live collection with a snapshot record by
// record, in order.
func (e *Engine) snapshotEquals(snapshot []models.Task) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.items) != len(snapshot) {
		return false
	}
	for i := range e.items {
		if !e.items[i].Equal(&snapshot[i]) {
			return false
		}
	}
	return true
}
