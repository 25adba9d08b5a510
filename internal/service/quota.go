package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"workspace-service/internal/apperror"
	"workspace-service/internal/store"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

// Resource is a quota-limited entity kind.
type Resource string

const (
	ResourceProjects Resource = "projects"
	ResourceUsers    Resource = "users"
)

var quotaMessages = map[Resource]string{
	ResourceProjects: "Project limit reached for your plan",
	ResourceUsers:    "User limit reached for your plan",
}

// QuotaEnforcer checks plan ceilings. Enforce must run inside the transaction
// that performs the insert: the tenant row lock it takes is what serializes
// concurrent creators of the same tenant.
type QuotaEnforcer struct{}

// NewQuotaEnforcer returns a QuotaEnforcer.
func NewQuotaEnforcer() *QuotaEnforcer {
	return &QuotaEnforcer{}
}

// Enforce fails with QuotaExceeded when the tenant already holds as many
// resources as its plan allows.
func (e *QuotaEnforcer) Enforce(ctx context.Context, q *store.Queries, tenantID uuid.UUID, resource Resource) error {
	tenant, err := q.LockTenant(tenantID)
	if err != nil {
		return fmt.Errorf("lock tenant: %w", err)
	}

	var count int64
	var ceiling int
	switch resource {
	case ResourceProjects:
		count, err = q.CountProjects(tenantID)
		ceiling = tenant.MaxProjects
	case ResourceUsers:
		count, err = q.CountUsers(tenantID)
		ceiling = tenant.MaxUsers
	default:
		return fmt.Errorf("unknown quota resource %q", resource)
	}
	if err != nil {
		return fmt.Errorf("count %s: %w", resource, err)
	}

	if count >= int64(ceiling) {
		logger.FromContext(ctx).Info("Quota exceeded",
			zap.String("tenant_id", tenantID.String()),
			zap.String("resource", string(resource)),
			zap.Int64("count", count),
			zap.Int("limit", ceiling))
		prometheus.RecordQuotaRejection(string(resource))
		return apperror.New(apperror.QuotaExceeded, quotaMessages[resource])
	}
	return nil
}
