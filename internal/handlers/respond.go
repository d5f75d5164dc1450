package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"grosir/internal/repositories"
	"grosir/internal/services"
)

// badRequest reports an unparsable request body.
func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// validationFailed reports validator errors as a field to message map. It
// returns false when err carries no validation errors.
func validationFailed(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, nil
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// invalidRequest reports a failed validator run on a request body.
func invalidRequest(c *fiber.Ctx, err error) error {
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	return badRequest(c, "Invalid request", err)
}

// serviceError maps repository and service errors onto HTTP statuses.
func serviceError(c *fiber.Ctx, message string, err error) error {
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidRule),
		errors.Is(err, services.ErrInvalidMaterial),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInsufficientStock):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// parseAsOf reads an optional RFC 3339 "as_of" query parameter.
func parseAsOf(c *fiber.Ctx) (*time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return nil, nil
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("as_of must be RFC 3339: %w", err)
	}
	return &asOf, nil
}
