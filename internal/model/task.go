package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the fixed statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the fixed priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work inside a project. TenantID always equals the
// owning project's tenant.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID    `json:"tenant_id" gorm:"type:uuid;not null;index:idx_tasks_tenant_project,priority:1"`
	ProjectID   uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index:idx_tasks_tenant_project,priority:2"`
	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'todo'"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	AssignedTo  *uuid.UUID   `json:"assigned_to" gorm:"type:uuid"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Project *Project `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TaskSummary is a task row as listed, with the assignee's display name.
type TaskSummary struct {
	Task
	AssigneeName *string `json:"assignee_name"`
}
