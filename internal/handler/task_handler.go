package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"workspace-service/internal/authz"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/internal/service"
)

// Tasks is the subset of the task service used over HTTP.
type Tasks interface {
	Create(ctx context.Context, scope authz.Scope, projectID uuid.UUID, in service.TaskInput) (*model.Task, error)
	List(ctx context.Context, scope authz.Scope, projectID uuid.UUID) ([]model.TaskSummary, error)
	Update(ctx context.Context, scope authz.Scope, projectID, taskID uuid.UUID, patch service.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, scope authz.Scope, projectID, taskID uuid.UUID) error
}

// TaskHandler serves /tasks/:projectId/tasks.
type TaskHandler struct {
	tasks Tasks
}

// NewTaskHandler returns a TaskHandler.
func NewTaskHandler(tasks Tasks) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create handles POST /tasks/:projectId/tasks
func (h *TaskHandler) Create(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		return notFound(c, "project not found in your organization")
	}
	var in service.TaskInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	scope, _ := middleware.ScopeFrom(c)

	task, err := h.tasks.Create(c.Request().Context(), scope, projectID, in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusCreated, task)
}

// List handles GET /tasks/:projectId/tasks
func (h *TaskHandler) List(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		return notFound(c, "project not found in your organization")
	}
	scope, _ := middleware.ScopeFrom(c)

	tasks, err := h.tasks.List(c.Request().Context(), scope, projectID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"tasks": tasks})
}

// Update handles PATCH /tasks/:projectId/tasks/:taskId
func (h *TaskHandler) Update(c echo.Context) error {
	projectID, taskID, ok := taskPath(c)
	if !ok {
		return notFound(c, "task not found for your tenant")
	}
	var patch service.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	scope, _ := middleware.ScopeFrom(c)

	task, err := h.tasks.Update(c.Request().Context(), scope, projectID, taskID, patch)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusOK, task)
}

// Delete handles DELETE /tasks/:projectId/tasks/:taskId
func (h *TaskHandler) Delete(c echo.Context) error {
	projectID, taskID, ok := taskPath(c)
	if !ok {
		return notFound(c, "task not found for your tenant")
	}
	scope, _ := middleware.ScopeFrom(c)

	if err := h.tasks.Delete(c.Request().Context(), scope, projectID, taskID); err != nil {
		return fail(c, err)
	}
	return successMessage(c, http.StatusOK, "Task deleted successfully")
}

func taskPath(c echo.Context) (projectID, taskID uuid.UUID, ok bool) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	taskID, err = uuid.Parse(c.Param("taskId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return projectID, taskID, true
}
