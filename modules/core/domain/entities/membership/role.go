package membership

import "fmt"

// Role is the organization-scoped access level of a member.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

func NewRole(r string) (Role, error) {
	role := Role(r)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q", r)
	}
	return role, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// rank places roles on the fixed total order viewer < admin < owner.
func (r Role) rank() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleAdmin:
		return 2
	case RoleOwner:
		return 3
	}
	return 0
}

// Satisfies reports whether r grants at least the access level of need.
func (r Role) Satisfies(need Role) bool {
	return r.rank() >= need.rank()
}
