package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeGone            ErrorType = "GONE"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal        ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail       ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPermissions ErrorCode = "INVALID_PERMISSIONS"
	ErrCodeInvalidRoleName    ErrorCode = "INVALID_ROLE_NAME"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound  ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"
	ErrCodeInvalidRole   ErrorCode = "INVALID_ROLE"
	ErrCodeRoleInUse     ErrorCode = "ROLE_IN_USE"

	ErrCodeInvitationNotFoundOrNotPending ErrorCode = "INVITATION_NOT_FOUND_OR_NOT_PENDING"
	ErrCodeInvalidInvitationToken         ErrorCode = "INVALID_INVITATION_TOKEN"
	ErrCodeInvitationExpired              ErrorCode = "INVITATION_EXPIRED"
	ErrCodeInvitationAlreadyUsed          ErrorCode = "INVITATION_ALREADY_USED"
	ErrCodeEmailAlreadyRegistered         ErrorCode = "EMAIL_ALREADY_REGISTERED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so copies produced by WithCause still compare
// equal to the sentinel they were derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy of e carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewGoneError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeGone,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusGone,
	}
}

func newUnprocessableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

var (
	ErrUnauthenticated    = NewUnauthorizedError("Authentication required", ErrCodeUnauthenticated)
	ErrForbidden          = NewForbiddenError("Insufficient permissions", ErrCodeForbidden)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	// Entities outside the caller's tenant are reported as not found.
	ErrNotFound     = NewNotFoundError("Resource not found", ErrCodeNotFound)
	ErrUserNotFound = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrRoleNotFound = NewNotFoundError("Role not found", ErrCodeRoleNotFound)

	ErrDuplicateRoleName  = NewConflictError("A role with this name already exists", ErrCodeDuplicateName)
	ErrInvalidRole        = newUnprocessableError("Role does not belong to this tenant", ErrCodeInvalidRole)
	ErrRoleInUse          = NewConflictError("Role is still referenced by users or invitations", ErrCodeRoleInUse)
	ErrInvalidPermissions = NewValidationError("Permissions must be a non-empty set of capability names", ErrCodeInvalidPermissions)
	ErrInvalidRoleName    = NewValidationError("Role name is required", ErrCodeInvalidRoleName)
	ErrInvalidEmail       = NewValidationError("A valid email address is required", ErrCodeInvalidEmail)

	ErrInvitationNotFoundOrNotPending = NewNotFoundError("Invitation not found or no longer pending", ErrCodeInvitationNotFoundOrNotPending)
	ErrInvalidInvitationToken         = NewNotFoundError("Invitation link is invalid", ErrCodeInvalidInvitationToken)
	ErrInvitationExpired              = NewGoneError("Invitation has expired", ErrCodeInvitationExpired)
	ErrInvitationAlreadyUsed          = NewConflictError("Invitation has already been used", ErrCodeInvitationAlreadyUsed)
	ErrEmailAlreadyRegistered         = NewConflictError("Email is already registered", ErrCodeEmailAlreadyRegistered)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
