// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"media-queue-service/internal/domain"
	"media-queue-service/internal/transport/httpserver/dto"
	"media-queue-service/internal/validator"
)

// errorResponse maps domain errors to a status code and body.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "queue not found",
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrSourceUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "SOURCE_UNAVAILABLE",
		})
	case errors.Is(err, domain.ErrMalformedResponse):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "MALFORMED_RESPONSE",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "internal error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

// validationResponse writes a 400 for a request that failed parsing or validation.
func validationResponse(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: verrs,
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: "invalid request",
		Code:  "INVALID_PARAMS",
	})
}
