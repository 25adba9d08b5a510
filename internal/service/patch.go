package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workspace-service/internal/model"
)

// Optional is a patch slot that tells an absent field apart from an explicit
// null and from a value. The zero value is absent.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a slot holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a slot that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked for keys present in the document, so a
// missing key leaves the slot absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

const dateLayout = "2006-01-02"

// DueDate is a task deadline. It decodes RFC 3339 timestamps and bare
// YYYY-MM-DD dates; a bare date is midnight UTC.
type DueDate struct {
	time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("due date must be a string: %w", err)
	}
	for _, layout := range []string{time.RFC3339Nano, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid due date %q", s)
}

// ProjectPatch is a partial project update.
type ProjectPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// Empty reports whether no field is supplied.
func (p ProjectPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set
}

// TaskInput holds the fields of a new task.
type TaskInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    model.TaskPriority `json:"priority"`
	AssignedTo  *uuid.UUID         `json:"assignedTo"`
	DueDate     *DueDate           `json:"dueDate"`
}

// TaskPatch is a partial task update. AssignedTo and DueDate accept null to
// clear the field.
type TaskPatch struct {
	Title       Optional[string]             `json:"title"`
	Description Optional[string]             `json:"description"`
	Status      Optional[model.TaskStatus]   `json:"status"`
	Priority    Optional[model.TaskPriority] `json:"priority"`
	AssignedTo  Optional[uuid.UUID]          `json:"assignedTo"`
	DueDate     Optional[DueDate]            `json:"dueDate"`
}

// Empty reports whether no field is supplied.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set &&
		!p.Priority.Set && !p.AssignedTo.Set && !p.DueDate.Set
}
