package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/paperdb/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// ConflictErrorResponse sends a conflict error (409). The caller may retry
// the whole request.
func ConflictErrorResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"status":        fiber.StatusConflict,
		"message":       message,
		"ok":            false,
		"conflictError": true,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"url":           c.OriginalURL(),
		"type":          string(types.KindConflict),
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      string(types.KindNotFound),
	})
}

// StatusForKind maps a workflow error kind to an HTTP status.
func StatusForKind(kind types.Kind) int {
	switch kind {
	case types.KindAuthorization:
		return fiber.StatusForbidden
	case types.KindNotFound:
		return fiber.StatusNotFound
	case types.KindValidation:
		return fiber.StatusBadRequest
	case types.KindInvalidState:
		return fiber.StatusUnprocessableEntity
	case types.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// WorkflowErrorResponse sends the response for an error returned by the
// workflow engine. Infrastructure errors are reported without detail.
func WorkflowErrorResponse(c *fiber.Ctx, err error, operation string) error {
	var we *types.WorkflowError
	if !errors.As(err, &we) {
		return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, operation)
	}

	switch we.Kind {
	case types.KindConflict:
		return ConflictErrorResponse(c, we.Message)
	case types.KindNotFound:
		return NotFoundResponse(c, we.Message)
	default:
		return ErrorResponse(c, we.Message, StatusForKind(we.Kind), string(we.Kind))
	}
}

// MutationSuccessResponse sends a success response for mutations (POST/DELETE)
func MutationSuccessResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message":   "Success",
		"ok":        true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status        int    `json:"status"`
	Message       string `json:"message"`
	Ok            bool   `json:"ok"`
	Timestamp     string `json:"timestamp"`
	URL           string `json:"url"`
	Type          string `json:"type,omitempty"`
	ConflictError bool   `json:"conflictError,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}
