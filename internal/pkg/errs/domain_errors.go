package errs

import "errors"

// Domain-specific sentinel errors for the usecase layers
var (
	// Resource errors
	ErrResourceNotFound    = errors.New("resource not found")
	ErrResourceUnavailable = errors.New("resource unavailable")

	// Request validation
	ErrInvalidInput = errors.New("invalid input")

	// Booking admission errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidBookingWindow = errors.New("invalid booking window")
	ErrCapacityExceeded     = errors.New("capacity exceeded")

	// Lifecycle errors
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Policy errors
	ErrPolicyViolation = errors.New("group policy violation")

	// Auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Store errors
	ErrTransientStoreFailure = errors.New("transient store failure")
	ErrDatabaseOperation     = errors.New("database operation failed")
)
