package handler

import (
	"github.com/labstack/echo/v4"

	"workspace-service/internal/authz"
	"workspace-service/internal/middleware"
	"workspace-service/prometheus"
)

// Handlers groups the route handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth     *AuthHandler
	Projects *ProjectHandler
	Tasks    *TaskHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the public, authenticated and operational routes.
func RegisterRoutes(e *echo.Echo, h Handlers, tokens middleware.TokenValidator) {
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	auth := e.Group("/auth")
	auth.POST("/register-tenant", h.Auth.RegisterTenant)
	auth.POST("/login", h.Auth.Login)

	requireAuth := middleware.JWTAuthMiddleware(tokens)
	can := middleware.RequireAction

	projects := e.Group("/projects", requireAuth)
	projects.POST("", h.Projects.Create, can(authz.ProjectCreate))
	projects.GET("", h.Projects.List, can(authz.ProjectList))
	projects.PATCH("/:id", h.Projects.Update, can(authz.ProjectUpdate))
	projects.DELETE("/:id", h.Projects.Delete, can(authz.ProjectDelete))

	tasks := e.Group("/tasks", requireAuth)
	tasks.POST("/:projectId/tasks", h.Tasks.Create, can(authz.TaskCreate))
	tasks.GET("/:projectId/tasks", h.Tasks.List, can(authz.TaskList))
	tasks.PATCH("/:projectId/tasks/:taskId", h.Tasks.Update, can(authz.TaskUpdate))
	tasks.DELETE("/:projectId/tasks/:taskId", h.Tasks.Delete, can(authz.TaskDelete))
}
