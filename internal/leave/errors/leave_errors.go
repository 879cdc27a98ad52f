package leaveerrors

import (
	"net/http"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidFileID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid file id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"start_date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid status filter",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrLeaveForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to modify this leave",
		http.StatusForbidden,
	)
	ErrReviewForbidden = apperror.New(
		apperror.CodeForbidden,
		"only managers and admins can review leave requests",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required",
		http.StatusBadRequest,
	)
)

// Overlap names the conflicting leave so the client can point at it.
func Overlap(leaveID, startDate, endDate, status string) error {
	return ErrLeaveOverlap.WithDetails(map[string]any{
		"leave_id":   leaveID,
		"start_date": startDate,
		"end_date":   endDate,
		"status":     status,
	})
}

// InvalidTransition reports the status the leave is actually in.
func InvalidTransition(from, to string) error {
	return ErrInvalidStatusTransition.WithDetails(map[string]any{
		"from": from,
		"to":   to,
	})
}
