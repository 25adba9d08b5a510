package model

import (
	"time"

	"github.com/google/uuid"
)

// Project is a tenant-owned container of tasks.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tenant *Tenant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// ProjectSummary is a project row as listed, with its creator and task count.
type ProjectSummary struct {
	Project
	CreatorName *string `json:"creator_name"`
	TaskCount   int64   `json:"task_count"`
}
