package rbac

import "github.com/jackson951/flexileave-app-sub001/internal/domain"

const (
	ResourceLeave        = "leave"
	ResourceUser         = "user"
	ResourceFile         = "file"
	ResourceNotification = "notification"
	ResourceRole         = "role"

	ActionRead    = "read"
	ActionCreate  = "create"
	ActionApprove = "approve"
	ActionManage  = "manage"
	ActionWrite   = "write"
	ActionSend    = "send"
)

// DefaultPermissions is seeded into role_permissions on migrate.
func DefaultPermissions() []RolePermission {
	grant := func(role string, pairs ...[2]string) []RolePermission {
		out := make([]RolePermission, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, RolePermission{Role: role, Resource: p[0], Action: p[1]})
		}
		return out
	}

	employee := [][2]string{
		{ResourceLeave, ActionRead},
		{ResourceLeave, ActionCreate},
		{ResourceFile, ActionRead},
		{ResourceFile, ActionWrite},
		{ResourceNotification, ActionRead},
	}
	manager := append(append([][2]string{}, employee...),
		[2]string{ResourceLeave, ActionApprove},
	)
	admin := append(append([][2]string{}, manager...),
		[2]string{ResourceUser, ActionManage},
		[2]string{ResourceNotification, ActionSend},
		[2]string{ResourceRole, ActionRead},
	)

	perms := grant(domain.RoleEmployee, employee...)
	perms = append(perms, grant(domain.RoleManager, manager...)...)
	perms = append(perms, grant(domain.RoleAdmin, admin...)...)
	return perms
}
