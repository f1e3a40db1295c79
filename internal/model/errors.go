package model

import "errors"

// Common errors used across the application
var (
	// Run errors
	ErrRunNotFound  = errors.New("run not found")
	ErrPinTaken     = errors.New("pin already in use")
	ErrPinExhausted = errors.New("could not allocate a unique pin")

	// Flag errors
	ErrFlagNotFound = errors.New("flag not found")

	// Question errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("question option not found")

	// History errors
	ErrHistoryNotFound     = errors.New("history not found")
	ErrHistoryActive       = errors.New("actor already has an active attempt for this run")
	ErrHistoryEnded        = errors.New("history has already ended")
	ErrHistoryFlagNotFound = errors.New("history flag not found")

	// Actor errors
	ErrNotOwner        = errors.New("actor does not own this resource")
	ErrGuestNotAllowed = errors.New("guests cannot perform this action")
	ErrGuestNotFound   = errors.New("guest session not found")

	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTicketInvalid      = errors.New("invalid or expired ticket")
)
