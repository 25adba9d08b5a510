package store

import (
	"github.com/google/uuid"

	"workspace-service/internal/model"
)

// CreateUser inserts u.
func (q *Queries) CreateUser(u *model.User) error {
	return translate(q.db.Create(u).Error)
}

// UserByEmail finds a user by email inside one tenant.
func (q *Queries) UserByEmail(tenantID uuid.UUID, email string) (*model.User, error) {
	var u model.User
	err := q.db.Where("tenant_id = ? AND email = ?", tenantID, email).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserInTenant reports whether userID is a member of tenantID.
func (q *Queries) UserInTenant(tenantID, userID uuid.UUID) (bool, error) {
	var n int64
	err := q.db.Model(&model.User{}).
		Where("id = ? AND tenant_id = ?", userID, tenantID).
		Count(&n).Error
	return n > 0, err
}

// CountUsers returns the number of users in a tenant.
func (q *Queries) CountUsers(tenantID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}
