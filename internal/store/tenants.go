package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"workspace-service/internal/model"
)

// CreateTenant inserts t.
func (q *Queries) CreateTenant(t *model.Tenant) error {
	return translate(q.db.Create(t).Error)
}

// SubdomainTaken reports whether a tenant already uses subdomain.
func (q *Queries) SubdomainTaken(subdomain string) (bool, error) {
	var n int64
	err := q.db.Model(&model.Tenant{}).Where("subdomain = ?", subdomain).Count(&n).Error
	return n > 0, err
}

// TenantBySubdomain returns the tenant registered under subdomain.
func (q *Queries) TenantBySubdomain(subdomain string) (*model.Tenant, error) {
	var t model.Tenant
	if err := q.db.Where("subdomain = ?", subdomain).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// LockTenant loads the tenant row with SELECT ... FOR UPDATE. The lock is
// held until the surrounding transaction ends; outside a transaction it is a
// plain read.
func (q *Queries) LockTenant(id uuid.UUID) (*model.Tenant, error) {
	var t model.Tenant
	err := q.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
