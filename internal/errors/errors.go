// Package errors provides custom error types for the Kindred API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Family and membership errors.
var (
	ErrFamilyNotFound   = &AppError{Code: "FAMILY_NOT_FOUND", Message: "Family not found", StatusCode: http.StatusNotFound}
	ErrRoomCodeNotFound = &AppError{Code: "ROOM_CODE_NOT_FOUND", Message: "Invalid room code", StatusCode: http.StatusNotFound}
	ErrMemberNotFound   = &AppError{Code: "MEMBER_NOT_FOUND", Message: "Family member not found", StatusCode: http.StatusNotFound}
	ErrNotFamilyMember  = &AppError{Code: "NOT_FAMILY_MEMBER", Message: "You are not a member of this family", StatusCode: http.StatusForbidden}
	ErrViewOnly         = &AppError{Code: "VIEW_ONLY_PERMISSION", Message: "Your permission level does not allow editing", StatusCode: http.StatusForbidden}
	ErrCreatorOnly      = &AppError{Code: "CREATOR_ONLY", Message: "Only the family creator can perform this action", StatusCode: http.StatusForbidden}
	ErrCreatorLeave     = &AppError{Code: "CREATOR_CANNOT_LEAVE", Message: "The creator cannot leave the family; delete it instead", StatusCode: http.StatusForbidden}
	ErrCreatorImmutable = &AppError{Code: "CREATOR_IMMUTABLE", Message: "The creator's membership cannot be modified", StatusCode: http.StatusForbidden}
	ErrAlreadyMember    = &AppError{Code: "ALREADY_MEMBER", Message: "You are already a member of this family", StatusCode: http.StatusConflict}
	ErrRequestPending   = &AppError{Code: "REQUEST_PENDING", Message: "You already have a pending request for this family", StatusCode: http.StatusConflict}
	ErrRequestResolved  = &AppError{Code: "REQUEST_RESOLVED", Message: "This request has already been processed", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Goal errors.
var (
	ErrGoalNotFound = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)
