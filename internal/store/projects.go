package store

import (
	"github.com/google/uuid"

	"workspace-service/internal/model"
)

// CreateProject inserts p.
func (q *Queries) CreateProject(p *model.Project) error {
	return translate(q.db.Create(p).Error)
}

// CountProjects returns the number of projects in a tenant.
func (q *Queries) CountProjects(tenantID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.Model(&model.Project{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}

// ListProjects returns the tenant's projects newest first, each with the
// creator's name and its current task count.
func (q *Queries) ListProjects(tenantID uuid.UUID) ([]model.ProjectSummary, error) {
	out := []model.ProjectSummary{}
	err := q.db.Table("projects AS p").
		Select(`p.*, u.full_name AS creator_name,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.tenant_id = p.tenant_id) AS task_count`).
		Joins("LEFT JOIN users u ON u.id = p.created_by AND u.tenant_id = p.tenant_id").
		Where("p.tenant_id = ?", tenantID).
		Order("p.created_at DESC, p.id DESC").
		Scan(&out).Error
	return out, err
}

// GetProject returns one project of the tenant.
func (q *Queries) GetProject(tenantID, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	if err := q.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ProjectExists reports whether id is a project of tenantID.
func (q *Queries) ProjectExists(tenantID, id uuid.UUID) (bool, error) {
	var n int64
	err := q.db.Model(&model.Project{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&n).Error
	return n > 0, err
}

// UpdateProject applies fields to one project of the tenant and returns the
// number of rows matched.
func (q *Queries) UpdateProject(tenantID, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := q.db.Model(&model.Project{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// DeleteProject removes one project of the tenant and returns the number of
// rows deleted. Its tasks must be removed first with DeleteProjectTasks.
func (q *Queries) DeleteProject(tenantID, id uuid.UUID) (int64, error) {
	res := q.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Project{})
	return res.RowsAffected, res.Error
}
