package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of
// these, and the HTTP layer maps kinds to status codes.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInUse            = errors.New("in use")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrTooManyRequests  = errors.New("too many requests")
)

var (
	ErrInvalidCredentials    = newServiceError(ErrUnauthenticated, "Invalid username or password")
	ErrIncorrectSecretAnswer = newServiceError(ErrUnauthenticated, "Incorrect answer to secret question")
	ErrSessionInvalid        = newServiceError(ErrUnauthenticated, "Unauthorized. Please login.")
	ErrAdminRequired         = newServiceError(ErrForbidden, "Access denied. Admin privileges required.")
	ErrAccountPending        = newServiceError(ErrForbidden, "Your account is pending admin approval. Please wait for approval.")
	ErrAccountRejected       = newServiceError(ErrForbidden, "Your account has been rejected. Please contact the administrator.")
	ErrAdminUndeletable      = newServiceError(ErrForbidden, "Admin accounts cannot be deleted")

	ErrUserNotFound     = newServiceError(ErrNotFound, "User not found")
	ErrUsernameNotFound = newServiceError(ErrNotFound, "Username not found")
	ErrBankNotFound     = newServiceError(ErrNotFound, "Bank not found")
	ErrBankUnavailable  = newServiceError(ErrNotFound, "Bank not found or inactive")
	ErrReceiptNotFound  = newServiceError(ErrNotFound, "Receipt not found")

	ErrUsernameTaken = newServiceError(ErrConflict, "Username already exists")
	ErrBankNameTaken = newServiceError(ErrConflict, "Bank name already exists")
	ErrBankInUse     = newServiceError(ErrInUse, "Cannot delete bank. It is in use by receipts.")

	ErrUserAlreadyProcessed    = newServiceError(ErrAlreadyProcessed, "User already processed")
	ErrReceiptAlreadyProcessed = newServiceError(ErrAlreadyProcessed, "Receipt already processed")
)

// ServiceError carries a message that is safe to show to API clients.
type ServiceError struct {
	kind    error
	message string
}

func newServiceError(kind error, message string) *ServiceError {
	return &ServiceError{kind: kind, message: message}
}

func (err *ServiceError) Error() string {
	return err.message
}

func (err *ServiceError) Unwrap() error {
	return err.kind
}

type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

func (err *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalidInput(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the client-facing text of err, or fallback when err
// carries none.
func PublicMessage(err error, fallback string) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return fallback
}
