package service

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/prometheus"
)

// AuditEntry describes one privileged mutation.
type AuditEntry struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
}

// AuditRecorder writes audit entries through the caller's transaction, so an
// entry exists exactly when the mutation it describes commits.
type AuditRecorder interface {
	Record(ctx context.Context, q *store.Queries, e AuditEntry) error
}

type auditRecorder struct {
	clock clock.Clock
}

// NewAuditRecorder returns the store-backed recorder.
func NewAuditRecorder(clk clock.Clock) AuditRecorder {
	if clk == nil {
		clk = clock.New()
	}
	return &auditRecorder{clock: clk}
}

func (r *auditRecorder) Record(ctx context.Context, q *store.Queries, e AuditEntry) error {
	err := q.InsertAuditLog(&model.AuditLog{
		ID:         uuid.New(),
		TenantID:   e.TenantID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		CreatedAt:  r.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record audit %s: %w", e.Action, err)
	}
	prometheus.RecordAuditWrite(e.Action)
	return nil
}
