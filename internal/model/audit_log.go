package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	ActionRegisterTenant = "REGISTER_TENANT"
	ActionCreateProject  = "CREATE_PROJECT"
	ActionUpdateProject  = "UPDATE_PROJECT"
	ActionDeleteProject  = "DELETE_PROJECT"
	ActionCreateTask     = "CREATE_TASK"
	ActionUpdateTask     = "UPDATE_TASK"
	ActionDeleteTask     = "DELETE_TASK"
)

// Audited entity types
const (
	EntityTenant  = "tenant"
	EntityProject = "project"
	EntityTask    = "task"
)

// AuditLog is an append-only record of a privileged mutation.
type AuditLog struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Action     string    `json:"action" gorm:"type:varchar(50);not null"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID   uuid.UUID `json:"entity_id" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"created_at"`
}
