package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"workspace-service/internal/handler"
	"workspace-service/internal/ratelimit"
	"workspace-service/internal/service"
	"workspace-service/internal/store/storetest"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/password"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type testServer struct {
	e *echo.Echo
}

func newServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	s := storetest.New(t)
	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	tokens := jwtutil.NewJWTUtil("0123456789abcdef0123456789abcdef", 24*time.Hour, nil)
	audit := service.NewAuditRecorder(nil)
	quota := service.NewQuotaEnforcer()

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	handler.RegisterRoutes(e, handler.Handlers{
		Auth:     handler.NewAuthHandler(service.NewTenantService(s, hasher, tokens, quota, audit, nil), limiter),
		Projects: handler.NewProjectHandler(service.NewProjectService(s, quota, audit, nil)),
		Tasks:    handler.NewTaskHandler(service.NewTaskService(s, audit, nil)),
		Health:   handler.NewHealthHandler(s, "workspace-service"),
	}, tokens)
	return &testServer{e: e}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(b)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (ts *testServer) register(t *testing.T, subdomain string) string {
	t.Helper()
	code, env := ts.do(t, http.MethodPost, "/auth/register-tenant", "", map[string]string{
		"tenantName":    "Tenant " + subdomain,
		"subdomain":     subdomain,
		"adminEmail":    "admin@" + subdomain + ".test",
		"adminPassword": "correct horse",
		"adminName":     "Admin",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var data struct {
		Tenant struct {
			ID        string `json:"id"`
			Subdomain string `json:"subdomain"`
			Plan      string `json:"plan"`
		} `json:"tenant"`
		User      sessionUser `json:"user"`
		Token     string      `json:"token"`
		ExpiresIn int64       `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	assert.EqualValues(t, 86400, data.ExpiresIn)
	assert.Equal(t, subdomain, data.Tenant.Subdomain)
	assert.Equal(t, "free", data.Tenant.Plan)
	assert.Equal(t, data.Tenant.ID, data.User.TenantID)
	assert.Equal(t, "tenant_admin", data.User.Role)
	return data.Token
}

type sessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
}

func decodeID(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v.ID
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newServer(t, nil)
	ts.register(t, "acme")

	code, env := ts.do(t, http.MethodPost, "/auth/register-tenant", "", map[string]string{
		"tenantName": "Again", "subdomain": "ACME", "adminEmail": "x@y.test",
		"adminPassword": "pw", "adminName": "X",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@acme.test", "password": "correct horse", "tenantSubdomain": "acme",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")
	var login struct {
		User  sessionUser `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.NotEmpty(t, login.User.ID)
	assert.NotEmpty(t, login.User.TenantID)
	assert.Equal(t, "admin@acme.test", login.User.Email)
	assert.Equal(t, "Admin", login.User.FullName)
	assert.NotContains(t, string(env.Data), "full_name")

	_, wrongPassword := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@acme.test", "password": "nope", "tenantSubdomain": "acme",
	})
	code, unknownTenant := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@acme.test", "password": "correct horse", "tenantSubdomain": "initech",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", wrongPassword.Message)
	assert.Equal(t, wrongPassword, unknownTenant)

	code, _ = ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@acme.test"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProjectAndTaskFlow(t *testing.T) {
	ts := newServer(t, nil)
	token := ts.register(t, "acme")

	code, env := ts.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	projectID := decodeID(t, env.Data)

	code, env = ts.do(t, http.MethodPost, "/tasks/"+projectID+"/tasks", token, map[string]interface{}{
		"title": "Write copy", "priority": "high", "dueDate": "2024-05-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	taskID := decodeID(t, env.Data)

	code, env = ts.do(t, http.MethodGet, "/projects", token, nil)
	require.Equal(t, http.StatusOK, code)
	var listed struct {
		Projects []struct {
			ID        string `json:"id"`
			TaskCount int64  `json:"task_count"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Projects, 1)
	assert.Equal(t, projectID, listed.Projects[0].ID)
	assert.EqualValues(t, 1, listed.Projects[0].TaskCount)

	code, env = ts.do(t, http.MethodPost, "/tasks/"+projectID+"/tasks", token, map[string]interface{}{
		"title": "Review copy", "dueDate": "2024-05-02",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var dated struct {
		DueDate time.Time `json:"due_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dated))
	assert.True(t, dated.DueDate.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)))

	code, env = ts.do(t, http.MethodGet, "/tasks/"+projectID+"/tasks", token, nil)
	require.Equal(t, http.StatusOK, code)
	var tasks struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks.Tasks, 2)

	code, _ = ts.do(t, http.MethodPost, "/tasks/"+projectID+"/tasks", token, map[string]interface{}{
		"title": "Bad date", "dueDate": "May 2nd",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = ts.do(t, http.MethodPatch, "/tasks/"+projectID+"/tasks/"+taskID, token, map[string]interface{}{
		"status": "done", "dueDate": nil,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var task struct {
		Status   string  `json:"status"`
		Priority string  `json:"priority"`
		DueDate  *string `json:"due_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "done", task.Status)
	assert.Equal(t, "high", task.Priority)
	assert.Nil(t, task.DueDate)

	code, _ = ts.do(t, http.MethodPatch, "/projects/"+projectID, token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodPatch, "/projects/not-a-uuid", token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodDelete, "/tasks/"+projectID+"/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodDelete, "/projects/"+projectID, token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCrossTenantRequestsAreNotFound(t *testing.T) {
	ts := newServer(t, nil)
	acme := ts.register(t, "acme")
	globex := ts.register(t, "globex")

	_, env := ts.do(t, http.MethodPost, "/projects", acme, map[string]string{"name": "Secret"})
	projectID := decodeID(t, env.Data)

	code, _ := ts.do(t, http.MethodPatch, "/projects/"+projectID, globex, map[string]string{"name": "Mine now"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodGet, "/tasks/"+projectID+"/tasks", globex, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = ts.do(t, http.MethodGet, "/projects", globex, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"projects":[]}`, string(env.Data))
}

func TestQuotaOverHTTP(t *testing.T) {
	ts := newServer(t, nil)
	token := ts.register(t, "acme")

	for i := 0; i < 3; i++ {
		code, _ := ts.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "p"})
		require.Equal(t, http.StatusCreated, code)
	}
	code, env := ts.do(t, http.MethodPost, "/projects", token, map[string]string{"name": "p"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Project limit reached for your plan", env.Message)
}

func TestUnauthenticated(t *testing.T) {
	ts := newServer(t, nil)
	code, env := ts.do(t, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, env = ts.do(t, http.MethodGet, "/projects", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

type denyAll struct{ err error }

func (d denyAll) Allow(context.Context, string) error { return d.err }

func TestLoginThrottle(t *testing.T) {
	body := map[string]string{"email": "a@acme.test", "password": "pw", "tenantSubdomain": "acme"}

	code, env := newServer(t, denyAll{ratelimit.ErrLimited}).do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Too many attempts, please try again later", env.Message)

	// an unreachable limiter lets the attempt through to the credential check
	code, env = newServer(t, denyAll{errors.Join(ratelimit.ErrUnavailable, errors.New("dial tcp"))}).
		do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	ts := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"status":"UP","service":"workspace-service","database":"Connected"}`,
		rec.Body.String())

	e := echo.New()
	e.GET("/health", handler.NewHealthHandler(downDB{}, "workspace-service").HealthCheck)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"status":"DOWN","service":"workspace-service","database":"Disconnected"}`,
		rec.Body.String())
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	ts := newServer(t, nil)
	code, env := ts.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}
