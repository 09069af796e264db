package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the API. Every error response carries one of these
// so agent clients can branch on a stable code rather than parse messages.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeAgentNotFound       = "AGENT_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeAgentInactive       = "AGENT_INACTIVE"
	CodeGenderMismatch      = "GENDER_MISMATCH"
	CodeScoreBelowThreshold = "SCORE_BELOW_THRESHOLD"
	CodeSelfMatchNotAllowed = "SELF_MATCH_NOT_ALLOWED"
	CodeMatchAlreadyExists  = "MATCH_ALREADY_EXISTS"
	CodeConflict            = "CONFLICT"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewAgentNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeAgentNotFound,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewAgentInactiveError(message string) *AppError {
	return &AppError{
		Code:    CodeAgentInactive,
		Message: message,
	}
}

func NewGenderMismatchError(message string) *AppError {
	return &AppError{
		Code:    CodeGenderMismatch,
		Message: message,
	}
}

func NewScoreBelowThresholdError(message string) *AppError {
	return &AppError{
		Code:    CodeScoreBelowThreshold,
		Message: message,
	}
}

func NewSelfMatchError() *AppError {
	return &AppError{
		Code:    CodeSelfMatchNotAllowed,
		Message: "An agent cannot match with itself",
	}
}

func NewMatchAlreadyExistsError() *AppError {
	return &AppError{
		Code:    CodeMatchAlreadyExists,
		Message: "A match already exists for this pair of agents",
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewDatabaseError(err error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: "Database operation failed",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// HTTPStatus maps an error code to the HTTP status family used for it.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeValidationError, CodeScoreBelowThreshold, CodeSelfMatchNotAllowed:
		return fiber.StatusBadRequest
	case CodeAgentInactive, CodeGenderMismatch:
		return fiber.StatusForbidden
	case CodeAgentNotFound, CodeNotFound:
		return fiber.StatusNotFound
	case CodeMatchAlreadyExists, CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response. When status is 0
// the status is derived from the error's code.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
		if status == 0 {
			status = appErr.HTTPStatus()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
	}

	return c.Status(status).JSON(response)
}
