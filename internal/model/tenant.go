package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated organization. Its ceilings are fixed at registration.
type Tenant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Subdomain   string    `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Plan        Plan      `json:"plan" gorm:"column:subscription_plan;type:varchar(20);not null"`
	MaxUsers    int       `json:"max_users" gorm:"not null"`
	MaxProjects int       `json:"max_projects" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
