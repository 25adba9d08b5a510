package store

import (
	"github.com/google/uuid"

	"workspace-service/internal/model"
)

// CreateTask inserts t.
func (q *Queries) CreateTask(t *model.Task) error {
	return translate(q.db.Create(t).Error)
}

// ListTasks returns the tasks of one project, newest first, with the
// assignee's name when assigned.
func (q *Queries) ListTasks(tenantID, projectID uuid.UUID) ([]model.TaskSummary, error) {
	out := []model.TaskSummary{}
	err := q.db.Table("tasks AS t").
		Select("t.*, u.full_name AS assignee_name").
		Joins("LEFT JOIN users u ON u.id = t.assigned_to AND u.tenant_id = t.tenant_id").
		Where("t.tenant_id = ? AND t.project_id = ?", tenantID, projectID).
		Order("t.created_at DESC, t.id DESC").
		Scan(&out).Error
	return out, err
}

// GetTask returns one task of the tenant.
func (q *Queries) GetTask(tenantID, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	if err := q.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// UpdateTask applies fields to one task of the tenant and returns the number
// of rows matched.
func (q *Queries) UpdateTask(tenantID, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := q.db.Model(&model.Task{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// DeleteTask removes one task of the tenant.
func (q *Queries) DeleteTask(tenantID, id uuid.UUID) (int64, error) {
	res := q.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

// DeleteProjectTasks removes every task of one project.
func (q *Queries) DeleteProjectTasks(tenantID, projectID uuid.UUID) (int64, error) {
	res := q.db.Where("tenant_id = ? AND project_id = ?", tenantID, projectID).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}
