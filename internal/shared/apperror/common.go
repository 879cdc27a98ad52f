package apperror

import "net/http"

// Cross-cutting sentinels; feature errors live in each module's errors package.
var (
	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrMalformedBody = New(
		CodeInvalidInput,
		"Request body is not valid JSON",
		http.StatusBadRequest,
	)
)
