package service

import (
	"context"
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
	errTaskNotFound     = apperror.New(apperror.NotFound, "task not found for your tenant")
	errTaskWrongProject = apperror.New(apperror.Authorization, "task does not belong to this project")
	errForeignAssignee  = apperror.New(apperror.Validation, "assignee must be a member of your organization")
)

// TaskService manages tasks inside the caller's tenant projects.
type TaskService struct {
	store *store.Store
	audit AuditRecorder
	clock clock.Clock
}

// NewTaskService wires the task service.
func NewTaskService(s *store.Store, audit AuditRecorder, clk clock.Clock) *TaskService {
	if clk == nil {
		clk = clock.New()
	}
	return &TaskService{store: s, audit: audit, clock: clk}
}

// Create adds a task to one of the tenant's projects.
func (s *TaskService) Create(ctx context.Context, scope authz.Scope, projectID uuid.UUID, in TaskInput) (*model.Task, error) {
	if err := authz.Authorize(scope, authz.TaskCreate); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.New(apperror.Validation, "task title is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.New(apperror.Validation, "invalid task priority")
	}

	now := s.clock.Now().UTC()
	task := &model.Task{
		ID:          uuid.New(),
		TenantID:    scope.TenantID(),
		ProjectID:   projectID,
		Title:       title,
		Description: in.Description,
		Status:      model.StatusTodo,
		Priority:    priority,
		AssignedTo:  in.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}

	err := s.store.Tx(ctx, "create_task", func(q *store.Queries) error {
		if err := projectInTenant(q, scope.TenantID(), projectID); err != nil {
			return err
		}
		if task.AssignedTo != nil {
			if err := assigneeInTenant(q, scope.TenantID(), *task.AssignedTo); err != nil {
				return err
			}
		}
		if err := q.CreateTask(task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionCreateTask,
			EntityType: model.EntityTask,
			EntityID:   task.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordResourceOperation("create_task")
	logger.FromContext(ctx).Info("Task created",
		zap.String("tenant_id", task.TenantID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("task_id", task.ID.String()))
	return task, nil
}

// List returns the tasks of one of the tenant's projects.
func (s *TaskService) List(ctx context.Context, scope authz.Scope, projectID uuid.UUID) ([]model.TaskSummary, error) {
	if err := authz.Authorize(scope, authz.TaskList); err != nil {
		return nil, err
	}
	q := s.store.Read(ctx)
	if err := projectInTenant(q, scope.TenantID(), projectID); err != nil {
		return nil, err
	}
	tasks, err := q.ListTasks(scope.TenantID(), projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the supplied fields to a task of the given project.
func (s *TaskService) Update(ctx context.Context, scope authz.Scope, projectID, taskID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	if err := authz.Authorize(scope, authz.TaskUpdate); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errNoFields
	}
	fields, err := taskFields(patch)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = s.clock.Now().UTC()

	var task *model.Task
	err = s.store.Tx(ctx, "update_task", func(q *store.Queries) error {
		if err := taskInProject(q, scope.TenantID(), projectID, taskID); err != nil {
			return err
		}
		if patch.AssignedTo.Set && !patch.AssignedTo.Null {
			if err := assigneeInTenant(q, scope.TenantID(), patch.AssignedTo.Value); err != nil {
				return err
			}
		}
		n, err := q.UpdateTask(scope.TenantID(), taskID, fields)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if n == 0 {
			return errTaskNotFound
		}
		if task, err = q.GetTask(scope.TenantID(), taskID); err != nil {
			return fmt.Errorf("reload task: %w", err)
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionUpdateTask,
			EntityType: model.EntityTask,
			EntityID:   taskID,
		})
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordResourceOperation("update_task")
	return task, nil
}

// Delete removes a task of the given project.
func (s *TaskService) Delete(ctx context.Context, scope authz.Scope, projectID, taskID uuid.UUID) error {
	if err := authz.Authorize(scope, authz.TaskDelete); err != nil {
		return err
	}

	err := s.store.Tx(ctx, "delete_task", func(q *store.Queries) error {
		if err := taskInProject(q, scope.TenantID(), projectID, taskID); err != nil {
			return err
		}
		n, err := q.DeleteTask(scope.TenantID(), taskID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if n == 0 {
			return errTaskNotFound
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   scope.TenantID(),
			UserID:     scope.UserID(),
			Action:     model.ActionDeleteTask,
			EntityType: model.EntityTask,
			EntityID:   taskID,
		})
	})
	if err != nil {
		return err
	}

	prometheus.RecordResourceOperation("delete_task")
	return nil
}

// taskFields validates a patch and maps it to column updates. Nothing is
// written when any supplied field is invalid.
func taskFields(p TaskPatch) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if p.Title.Null || title == "" {
			return nil, apperror.New(apperror.Validation, "task title cannot be empty")
		}
		fields["title"] = title
	}
	if p.Description.Set {
		fields["description"] = p.Description.Value
	}
	if p.Status.Set {
		if p.Status.Null || !p.Status.Value.Valid() {
			return nil, apperror.New(apperror.Validation, "invalid task status")
		}
		fields["status"] = string(p.Status.Value)
	}
	if p.Priority.Set {
		if p.Priority.Null || !p.Priority.Value.Valid() {
			return nil, apperror.New(apperror.Validation, "invalid task priority")
		}
		fields["priority"] = string(p.Priority.Value)
	}
	if p.AssignedTo.Set {
		if p.AssignedTo.Null {
			fields["assigned_to"] = nil
		} else {
			fields["assigned_to"] = p.AssignedTo.Value
		}
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			fields["due_date"] = nil
		} else {
			fields["due_date"] = p.DueDate.Value.UTC()
		}
	}
	return fields, nil
}

func taskInProject(q *store.Queries, tenantID, projectID, taskID uuid.UUID) error {
	task, err := q.GetTask(tenantID, taskID)
	if isNotFound(err) {
		return errTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if task.ProjectID != projectID {
		return errTaskWrongProject
	}
	return nil
}

func assigneeInTenant(q *store.Queries, tenantID, userID uuid.UUID) error {
	ok, err := q.UserInTenant(tenantID, userID)
	if err != nil {
		return fmt.Errorf("check assignee: %w", err)
	}
	if !ok {
		return errForeignAssignee
	}
	return nil
}
