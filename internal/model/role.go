package model

// Role is the permission level of a user inside its tenant.
type Role string

const (
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
	RoleSuperAdmin  Role = "super_admin"
)

// ParseRole returns the Role for s and whether it is one of the known roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleTenantAdmin, RoleUser, RoleSuperAdmin:
		return r, true
	}
	return "", false
}
