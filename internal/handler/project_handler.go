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

// Projects is the subset of the project service used over HTTP.
type Projects interface {
	Create(ctx context.Context, scope authz.Scope, name, description string) (*model.Project, error)
	List(ctx context.Context, scope authz.Scope) ([]model.ProjectSummary, error)
	Update(ctx context.Context, scope authz.Scope, projectID uuid.UUID, patch service.ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, scope authz.Scope, projectID uuid.UUID) error
}

// ProjectHandler serves /projects.
type ProjectHandler struct {
	projects Projects
}

// NewProjectHandler returns a ProjectHandler.
func NewProjectHandler(projects Projects) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	scope, _ := middleware.ScopeFrom(c)

	project, err := h.projects.Create(c.Request().Context(), scope, req.Name, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusCreated, project)
}

// List handles GET /projects
func (h *ProjectHandler) List(c echo.Context) error {
	scope, _ := middleware.ScopeFrom(c)

	projects, err := h.projects.List(c.Request().Context(), scope)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusOK, echo.Map{"projects": projects})
}

// Update handles PATCH /projects/:id
func (h *ProjectHandler) Update(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, "project not found")
	}
	var patch service.ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}
	scope, _ := middleware.ScopeFrom(c)

	project, err := h.projects.Update(c.Request().Context(), scope, projectID, patch)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusOK, project)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, "project not found")
	}
	scope, _ := middleware.ScopeFrom(c)

	if err := h.projects.Delete(c.Request().Context(), scope, projectID); err != nil {
		return fail(c, err)
	}
	return successMessage(c, http.StatusOK, "Project deleted successfully")
}
