// Package authz is the authorization guard: it owns the action to role
// policy and the Scope every data operation is filtered by.
package authz

import (
	"github.com/google/uuid"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/pkg/jwtutil"
)

// Action names a protected operation.
type Action string

const (
	ProjectCreate Action = "project.create"
	ProjectList   Action = "project.list"
	ProjectUpdate Action = "project.update"
	ProjectDelete Action = "project.delete"
	TaskCreate    Action = "task.create"
	TaskList      Action = "task.list"
	TaskUpdate    Action = "task.update"
	TaskDelete    Action = "task.delete"
)

type roleSet map[model.Role]struct{}

func roles(rs ...model.Role) roleSet {
	s := make(roleSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

var (
	anyRole = roles(model.RoleTenantAdmin, model.RoleUser, model.RoleSuperAdmin)
	admins  = roles(model.RoleTenantAdmin, model.RoleSuperAdmin)
)

var policy = map[Action]roleSet{
	ProjectCreate: admins,
	ProjectList:   anyRole,
	ProjectUpdate: anyRole,
	ProjectDelete: admins,
	TaskCreate:    anyRole,
	TaskList:      anyRole,
	TaskUpdate:    anyRole,
	TaskDelete:    anyRole,
}

// ErrForbidden is returned when a role is not allowed to perform an action.
var ErrForbidden = apperror.New(apperror.Authorization, "Forbidden: insufficient permissions")

var errNoIdentity = apperror.New(apperror.Authentication, "Invalid or expired token")

// Scope is an authenticated identity. Its tenant id is the only tenant filter
// services apply; it is never taken from request input.
type Scope struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	role     model.Role
}

// NewScope builds a scope for an identity the caller has already verified.
func NewScope(tenantID, userID uuid.UUID, role model.Role) (Scope, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return Scope{}, errNoIdentity
	}
	if _, ok := model.ParseRole(string(role)); !ok {
		return Scope{}, errNoIdentity
	}
	return Scope{tenantID: tenantID, userID: userID, role: role}, nil
}

// FromClaims derives the scope from validated token claims.
func FromClaims(c *jwtutil.UserClaims) (Scope, error) {
	if c == nil {
		return Scope{}, errNoIdentity
	}
	return NewScope(c.TenantID, c.UserID, model.Role(c.Role))
}

func (s Scope) TenantID() uuid.UUID { return s.tenantID }
func (s Scope) UserID() uuid.UUID   { return s.userID }
func (s Scope) Role() model.Role    { return s.role }

// Valid reports whether the scope carries an identity.
func (s Scope) Valid() bool {
	return s.tenantID != uuid.Nil && s.userID != uuid.Nil
}

// Allowed reports whether role may perform action. Unknown actions allow nobody.
func Allowed(role model.Role, action Action) bool {
	set, ok := policy[action]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Authorize checks that s is authenticated and its role may perform action.
func Authorize(s Scope, action Action) error {
	if !s.Valid() {
		return errNoIdentity
	}
	if !Allowed(s.role, action) {
		return ErrForbidden
	}
	return nil
}
