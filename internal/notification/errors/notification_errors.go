package notificationerrors

import (
	"net/http"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification id",
		http.StatusBadRequest,
	)
	ErrInvalidRecipient = apperror.New(
		apperror.CodeInvalidInput,
		"invalid recipient id",
		http.StatusBadRequest,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification type",
		http.StatusBadRequest,
	)
	ErrTitleRequired   = apperror.RequiredField("title")
	ErrMessageRequired = apperror.RequiredField("message")
	ErrSendForbidden = apperror.New(
		apperror.CodeForbidden,
		"only admins can send system notifications",
		http.StatusForbidden,
	)
	ErrNoRecipients = apperror.New(
		apperror.CodeInvalidInput,
		"no recipients matched",
		http.StatusBadRequest,
	)
)
