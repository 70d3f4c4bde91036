package handlerutil

import (
	"errors"

	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/logger"
	"notedash/internal/services/records"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// RecordID returns the :id route parameter, or a 404 when it is missing
func RecordID(c *fiber.Ctx, handlerName string) (string, error) {
	id := c.Params("id")
	if id == "" {
		logger.L().Warn("missing record ID parameter", "handler", handlerName, "path", c.Path())
		return "", httperr.NotFound(records.ErrNotFound)
	}
	return id, nil
}

// HandleServiceError maps record store errors onto HTTP responses
func HandleServiceError(err error, handlerName string, id string) error {
	logFields := []any{"handler", handlerName, "error", err}
	if id != "" {
		logFields = append(logFields, "id", id)
	}

	switch {
	case errors.Is(err, records.ErrNotFound):
		logger.L().Info("resource not found", logFields...)
		return httperr.NotFound(records.ErrNotFound)
	case errors.Is(err, records.ErrValidation):
		logger.L().Warn("record validation failed", logFields...)
		return httperr.InvalidInput(err)
	case errors.Is(err, records.ErrPersistence):
		logger.L().Error("storage operation failed", logFields...)
		return httperr.Fail(httperr.ErrServiceUnavailable)
	}

	logger.L().Error("service operation failed", logFields...)
	return httperr.Fail(httperr.ErrInternal)
}
