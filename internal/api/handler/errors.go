package handler

import (
	"net/http"

	"github.com/aweston/flagchase/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeValidationFailed   = apierr.CodeValidationFailed
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeNotOwner           = apierr.CodeNotOwner
	CodeGuestNotAllowed    = apierr.CodeGuestNotAllowed
	CodeRunNotFound        = apierr.CodeRunNotFound
	CodeFlagNotFound       = apierr.CodeFlagNotFound
	CodeQuestionNotFound   = apierr.CodeQuestionNotFound
	CodeOptionNotFound     = apierr.CodeOptionNotFound
	CodeHistoryNotFound    = apierr.CodeHistoryNotFound
	CodeHistoryActive      = apierr.CodeHistoryActive
	CodeHistoryEnded       = apierr.CodeHistoryEnded
	CodePinTaken           = apierr.CodePinTaken
	CodePinExhausted       = apierr.CodePinExhausted
	CodeGuestNotFound      = apierr.CodeGuestNotFound
	CodeUserNotFound       = apierr.CodeUserNotFound
	CodeEmailExists        = apierr.CodeEmailExists
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeTicketInvalid      = apierr.CodeTicketInvalid
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewValidationError creates a 422 validation error
func NewValidationError(message string) error {
	return apierr.NewValidationError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
