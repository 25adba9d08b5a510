package store

import "workspace-service/internal/model"

// InsertAuditLog appends one audit entry. Audit rows are never updated or
// deleted through the store.
func (q *Queries) InsertAuditLog(entry *model.AuditLog) error {
	return translate(q.db.Create(entry).Error)
}
