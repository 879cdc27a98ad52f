package usererrors

import (
	"net/http"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User with the same email already exists",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid role",
		http.StatusBadRequest,
	)

	ErrUserHasDependents = apperror.New(
		apperror.CodeConflict,
		"User still has leaves or notifications and cannot be deleted",
		http.StatusConflict,
	)

	ErrCannotModifySelf = apperror.New(
		apperror.CodeInvalidInput,
		"You cannot deactivate or delete your own account",
		http.StatusBadRequest,
	)
)
