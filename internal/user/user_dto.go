package user

import "github.com/jackson951/flexileave-app-sub001/internal/domain"

type CreateUserRequest struct {
	Name          string         `json:"name" binding:"required,max=255"`
	Email         string         `json:"email" binding:"required,email"`
	Password      string         `json:"password" binding:"required,min=8"`
	Role          string         `json:"role" binding:"omitempty,oneof=admin manager employee"`
	LeaveBalances map[string]int `json:"leave_balances" binding:"omitempty"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateBalancesRequest only touches the leave types it names.
type UpdateBalancesRequest struct {
	LeaveBalances map[string]int `json:"leave_balances" binding:"required,min=1"`
}

type ListUsersFilter struct {
	Query    string
	Role     string
	Page     int
	PageSize int
}

type UserResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          string         `json:"role"`
	IsActive      bool           `json:"is_active"`
	LeaveBalances map[string]int `json:"leave_balances"`
	CreatedAt     string         `json:"created_at"`
}

type BalancesResponse struct {
	UserID        string         `json:"user_id"`
	LeaveBalances map[string]int `json:"leave_balances"`
}

func normalizeRole(role string) string {
	r := domain.NormalizeRole(role)
	if r == "" {
		return domain.RoleEmployee
	}
	return r
}
