package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/coursehub/coursehub/internal/apperror"
)

// JsonResponse writes the uniform {status, message, data} envelope.
func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ValidationErrorResponse reports field-level input problems.
func ValidationErrorResponse(c *fiber.Ctx, errs map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errs)
}

// ErrorResponse maps a domain error onto its HTTP status. Unrecognized
// errors become opaque 500s so internals never leak to the client.
func ErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, "Not found", nil)
	case errors.Is(err, apperror.ErrSubscriptionNotFound):
		return JsonResponse(c, fiber.StatusNotFound, false, "Subscription not found", nil)
	case errors.Is(err, apperror.ErrTitleUnavailable):
		return JsonResponse(c, fiber.StatusConflict, false, "The title is already taken", nil)
	case errors.Is(err, apperror.ErrOptimisticConcurrency):
		return JsonResponse(c, fiber.StatusConflict, false, "The course was modified by someone else, reload and retry", nil)
	case errors.Is(err, apperror.ErrInvalidVote):
		return JsonResponse(c, fiber.StatusBadRequest, false, "Vote must be between 1 and 5", nil)
	case errors.Is(err, apperror.ErrImageInvalid):
		return JsonResponse(c, fiber.StatusBadRequest, false, "The image could not be processed", nil)
	case errors.Is(err, apperror.ErrUnknownUser):
		return JsonResponse(c, fiber.StatusForbidden, false, "User identity is incomplete", nil)
	case errors.Is(err, apperror.ErrSendFailure):
		return JsonResponse(c, fiber.StatusBadGateway, false, "The message could not be delivered", nil)
	case errors.Is(err, apperror.ErrPaymentGateway):
		return JsonResponse(c, fiber.StatusBadGateway, false, "The payment provider is unavailable", nil)
	case errors.Is(err, apperror.ErrInvalidInput):
		return JsonResponse(c, fiber.StatusUnprocessableEntity, false, err.Error(), nil)
	default:
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
}
