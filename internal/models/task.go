package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Title length bounds enforced on create and update.
const (
	MinTitleLen = 2
	MaxTitleLen = 100
)

// Task is a single task record. The ID is assigned by whichever store
// creates the record and never changes afterwards.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	clone := *t
	return &clone
}

// Equal reports whether two tasks carry the same record data.
// Timestamps are compared by instant, not by location.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.Completed == other.Completed &&
		t.CreatedAt.Equal(other.CreatedAt) &&
		t.UpdatedAt.Equal(other.UpdatedAt)
}

// Touch refreshes the updated timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// CreateTaskInput is the payload for creating a task.
type CreateTaskInput struct {
	Title string `json:"title" validate:"required,min=2,max=100"`
}

// UpdateTaskInput is a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (u UpdateTaskInput) Empty() bool {
	return u.Title == nil && u.Completed == nil
}

// ValidateTitle checks the title bounds shared by create and update.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < MinTitleLen {
		return ErrTitleTooShort
	}
	if n > MaxTitleLen {
		return ErrTitleTooLong
	}
	return nil
}

// EqualSnapshots reports whether two ordered collections carry the same
// records in the same order.
func EqualSnapshots(a, b []Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(&b[i]) {
			return false
		}
	}
	return true
}
