package balanceerrors

import (
	"fmt"
	"net/http"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
)

var (
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be greater than zero",
		http.StatusBadRequest,
	)
	ErrNegativeBalance = apperror.New(
		apperror.CodeInvalidInput,
		"leave balance cannot be negative",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
)

// InsufficientBalance names the available and requested days for the caller.
func InsufficientBalance(leaveType string, available, requested int) error {
	return &apperror.AppError{
		Code:       ErrInsufficientBalance.Code,
		Message:    ErrInsufficientBalance.Message,
		HTTPStatus: ErrInsufficientBalance.HTTPStatus,
		Details: map[string]any{
			"leave_type": leaveType,
			"available":  available,
			"requested":  requested,
		},
		Err: fmt.Errorf("%s: available %d, requested %d", leaveType, available, requested),
	}
}
