package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"workspace-service/internal/apperror"
	"workspace-service/internal/authz"
	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

var (
	errProjectNotFound = apperror.New(apperror.NotFound, "project not found")
	errNoFields        = apperror.New(apperror.Validation, "no fields to update")
)

// ProjectService manages the projects of the caller's tenant.
type ProjectService struct {
	store *store.Store
	quota *QuotaEnforcer
	audit AuditRecorder
	clock clock.Clock
}

// NewProjectService wires the project service.
func NewProjectService(s *store.Store, quota *QuotaEnforcer, audit AuditRecorder, clk clock.Clock) *ProjectService {
	if clk == nil {
		clk = clock.New()
	}
	return &ProjectService{store: s, quota: quota, audit: audit, clock: clk}
}

// Create adds a project within the tenant's plan quota.
func (s *ProjectService) Create(ctx context.Context, scope authz.Scope, name, description string) (*model.Project, error) {
	if err := authz.Authorize(scope, authz.ProjectCreate); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.New(apperror.Validation, "project name is required")
	}

	now := s.clock.Now().UTC()
	project := &model.Project{
		ID:          uuid.New(),
		TenantID:    scope.TenantID(),
		Name:        name,
		Description: description,
		CreatedBy:   scope.UserID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.Tx(ctx, "create_project", func(q *store.Queries) error {
		if err := s.quota.Enforce(ctx, q, scope.TenantID(), ResourceProjects); err != nil {
			return err
		}
		if err := q.CreateProject(project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionCreateProject,
			EntityType: model.EntityProject,
			EntityID:   project.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordResourceOperation("create_project")
	logger.FromContext(ctx).Info("Project created",
		zap.String("tenant_id", project.TenantID.String()),
		zap.String("project_id", project.ID.String()))
	return project, nil
}

// List returns the tenant's projects newest first.
func (s *ProjectService) List(ctx context.Context, scope authz.Scope) ([]model.ProjectSummary, error) {
	if err := authz.Authorize(scope, authz.ProjectList); err != nil {
		return nil, err
	}
	projects, err := s.store.Read(ctx).ListProjects(scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Update applies the supplied fields to one of the tenant's projects.
func (s *ProjectService) Update(ctx context.Context, scope authz.Scope, projectID uuid.UUID, patch ProjectPatch) (*model.Project, error) {
	if err := authz.Authorize(scope, authz.ProjectUpdate); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errNoFields
	}

	fields := map[string]interface{}{}
	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if patch.Name.Null || name == "" {
			return nil, apperror.New(apperror.Validation, "project name cannot be empty")
		}
		fields["name"] = name
	}
	if patch.Description.Set {
		fields["description"] = patch.Description.Value
	}
	fields["updated_at"] = s.clock.Now().UTC()

	var project *model.Project
	err := s.store.Tx(ctx, "update_project", func(q *store.Queries) error {
		n, err := q.UpdateProject(scope.TenantID(), projectID, fields)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if n == 0 {
			return errProjectNotFound
		}
		if project, err = q.GetProject(scope.TenantID(), projectID); err != nil {
			return fmt.Errorf("reload project: %w", err)
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionUpdateProject,
			EntityType: model.EntityProject,
			EntityID:   projectID,
		})
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordResourceOperation("update_project")
	return project, nil
}

// Delete removes one of the tenant's projects together with its tasks.
func (s *ProjectService) Delete(ctx context.Context, scope authz.Scope, projectID uuid.UUID) error {
	if err := authz.Authorize(scope, authz.ProjectDelete); err != nil {
		return err
	}

	err := s.store.Tx(ctx, "delete_project", func(q *store.Queries) error {
		if _, err := q.DeleteProjectTasks(scope.TenantID(), projectID); err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		n, err := q.DeleteProject(scope.TenantID(), projectID)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if n == 0 {
			return errProjectNotFound
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionDeleteProject,
			EntityType: model.EntityProject,
			EntityID:   projectID,
		})
	})
	if err != nil {
		return err
	}

	prometheus.RecordResourceOperation("delete_project")
	logger.FromContext(ctx).Info("Project deleted",
		zap.String("tenant_id", scope.TenantID().String()),
		zap.String("project_id", projectID.String()))
	return nil
}

// projectInTenant fails with NotFound when projectID is not one of the
// tenant's projects.
func projectInTenant(q *store.Queries, tenantID, projectID uuid.UUID) error {
	ok, err := q.ProjectExists(tenantID, projectID)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !ok {
		return errProjectNotInTenant
	}
	return nil
}

var errProjectNotInTenant = apperror.New(apperror.NotFound, "project not found in your organization")

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
