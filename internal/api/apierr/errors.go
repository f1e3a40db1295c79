package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/services/flag"
	"github.com/aweston/flagchase/internal/services/question"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotOwner           = "NOT_OWNER"
	CodeGuestNotAllowed    = "GUEST_NOT_ALLOWED"
	CodeRunNotFound        = "RUN_NOT_FOUND"
	CodeFlagNotFound       = "FLAG_NOT_FOUND"
	CodeQuestionNotFound   = "QUESTION_NOT_FOUND"
	CodeOptionNotFound     = "OPTION_NOT_FOUND"
	CodeHistoryNotFound    = "HISTORY_NOT_FOUND"
	CodeHistoryActive      = "HISTORY_ACTIVE"
	CodeHistoryEnded       = "HISTORY_ENDED"
	CodePinTaken           = "PIN_TAKEN"
	CodePinExhausted       = "PIN_EXHAUSTED"
	CodeGuestNotFound      = "GUEST_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTicketInvalid      = "TICKET_INVALID"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRunNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRunNotFound, "Run not found"}}
	case errors.Is(err, model.ErrFlagNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFlagNotFound, "Flag not found"}}
	case errors.Is(err, model.ErrQuestionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeQuestionNotFound, "Question not found"}}
	case errors.Is(err, model.ErrOptionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeOptionNotFound, "Question option not found"}}
	case errors.Is(err, model.ErrHistoryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHistoryNotFound, "History not found"}}
	case errors.Is(err, model.ErrHistoryFlagNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFlagNotFound, "Flag is not part of this attempt"}}
	case errors.Is(err, model.ErrHistoryActive):
		return &httpError{http.StatusConflict, APIError{CodeHistoryActive, "An attempt for this run is already active"}}
	case errors.Is(err, model.ErrHistoryEnded):
		return &httpError{http.StatusConflict, APIError{CodeHistoryEnded, "This attempt has already ended"}}
	case errors.Is(err, model.ErrPinTaken):
		return &httpError{http.StatusConflict, APIError{CodePinTaken, "Pin is already in use"}}
	case errors.Is(err, model.ErrPinExhausted):
		return &httpError{http.StatusConflict, APIError{CodePinExhausted, "Could not allocate a unique pin"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "Only the owner can perform this action"}}
	case errors.Is(err, model.ErrGuestNotAllowed):
		return &httpError{http.StatusForbidden, APIError{CodeGuestNotAllowed, "Guests cannot perform this action"}}
	case errors.Is(err, model.ErrGuestNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGuestNotFound, "Guest session not found or expired"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email is already registered"}}
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, model.ErrTicketInvalid):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeTicketInvalid, "Invalid or expired ticket"}}

	// Map service errors
	case errors.Is(err, actor.ErrUnauthenticated):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
	case errors.Is(err, flag.ErrInvalidCoordinates):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationFailed, "Latitude and longitude are required and must be in range"}}
	case errors.Is(err, question.ErrEmptyText):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationFailed, "Question text must not be empty"}}
	case errors.Is(err, question.ErrUnknownFlag):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationFailed, "Flag does not belong to this run"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewValidationError creates a 422 validation error
func NewValidationError(message string) error {
	return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationFailed, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
