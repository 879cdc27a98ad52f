package domain

import "strings"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   string
}

func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

func IsValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

func (a Actor) IsAdmin() bool {
	return NormalizeRole(a.Role) == RoleAdmin
}

// CanReview reports whether the actor may see and action other users' leaves.
func (a Actor) CanReview() bool {
	switch NormalizeRole(a.Role) {
	case RoleAdmin, RoleManager:
		return true
	default:
		return false
	}
}
