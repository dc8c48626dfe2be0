package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/terraincognita07/ereceipt/internal/services"
)

const genericServerError = "Internal server error"

func respondSuccess(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// respondList writes a list envelope with count; extra keys are merged in.
func respondList[T any](c *fiber.Ctx, message string, items []T, extra fiber.Map) error {
	if items == nil {
		items = []T{}
	}
	body := fiber.Map{
		"success": true,
		"message": message,
		"data":    items,
		"count":   len(items),
	}
	for key, value := range extra {
		body[key] = value
	}
	return c.JSON(body)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInUse),
		errors.Is(err, services.ErrAlreadyProcessed):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrTooManyRequests):
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError maps a service error to its status. Unclassified errors
// are logged and answered with fallback.
func respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	status := serviceErrorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		if fallback == "" {
			fallback = genericServerError
		}
		return apiError(c, status, fallback)
	}
	return apiError(c, status, services.PublicMessage(err, fallback))
}

// ErrorHandler renders framework errors and recovered panics as envelopes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := genericServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}

	switch status {
	case fiber.StatusInternalServerError:
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		message = genericServerError
	case fiber.StatusRequestEntityTooLarge:
		message = "Request body too large"
	}
	return apiError(c, status, message)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, &services.ValidationError{Message: "Invalid " + name}
	}
	return uint(value), nil
}

// parseBody decodes a JSON or form body into target. An empty body leaves
// target untouched.
func parseBody(c *fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(target); err != nil {
		return &services.ValidationError{Message: "Invalid request body"}
	}
	return nil
}

// optionalFormValue returns nil for absent or blank multipart fields.
func optionalFormValue(c *fiber.Ctx, key string) *string {
	value := c.FormValue(key)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
