package attachmenterrors

import (
	"net/http"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
)

var (
	ErrInvalidFileID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid file id",
		http.StatusBadRequest,
	)
	ErrFileRequired = apperror.New(
		apperror.CodeInvalidInput,
		"file is required",
		http.StatusBadRequest,
	)
	ErrUnsupportedFileType = apperror.New(
		apperror.CodeInvalidInput,
		"file type is not allowed",
		http.StatusBadRequest,
	)
	ErrFileTooLarge = apperror.New(
		apperror.CodeTooLarge,
		"file exceeds the upload size limit",
		http.StatusRequestEntityTooLarge,
	)
	ErrFileNotFound = apperror.New(
		apperror.CodeNotFound,
		"file not found",
		http.StatusNotFound,
	)
	ErrFileForbidden = apperror.New(
		apperror.CodeForbidden,
		"only the uploader or an admin can manage this file",
		http.StatusForbidden,
	)
	ErrFileAttachedElsewhere = apperror.New(
		apperror.CodeConflict,
		"file is already attached to another leave",
		http.StatusConflict,
	)
	ErrFileNotAttached = apperror.New(
		apperror.CodeConflict,
		"file is not attached to this leave",
		http.StatusConflict,
	)
)
