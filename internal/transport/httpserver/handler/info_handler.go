package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-queue-service/internal/app/service"
	"media-queue-service/internal/transport/httpserver/dto"
	"media-queue-service/internal/validator"
)

// InfoHandler handles info lookups and extraction cache administration.
type InfoHandler struct {
	service   *service.InfoService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(svc *service.InfoService, v *validator.Validator, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// GetInfo handles GET /api/v1/info
func (h *InfoHandler) GetInfo(c *fiber.Ctx) error {
	var q dto.InfoQuery
	if err := c.QueryParser(&q); err != nil {
		return validationResponse(c, err)
	}
	if err := h.validator.Validate(&q); err != nil {
		return validationResponse(c, err)
	}

	info, err := h.service.GetInfo(c.UserContext(), q.Source(), q.Force)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(dto.FromInfo(info))
}

// CacheStats handles GET /api/v1/cache
func (h *InfoHandler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(dto.FromCacheStats(h.service.CacheStats()))
}

// TrimCache handles POST /api/v1/cache/trim
func (h *InfoHandler) TrimCache(c *fiber.Ctx) error {
	return c.JSON(dto.FromCacheStats(h.service.TrimCache()))
}

// ClearCache handles DELETE /api/v1/cache
func (h *InfoHandler) ClearCache(c *fiber.Ctx) error {
	h.service.ClearCache()
	h.logger.Info("info cache cleared via API", zap.String("ip", c.IP()))

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveEntry handles DELETE /api/v1/cache/entry
func (h *InfoHandler) RemoveEntry(c *fiber.Ctx) error {
	var q dto.SourceQuery
	if err := c.QueryParser(&q); err != nil {
		return validationResponse(c, err)
	}
	if err := h.validator.Validate(&q); err != nil {
		return validationResponse(c, err)
	}

	h.service.Invalidate(q.Source())

	return c.SendStatus(fiber.StatusNoContent)
}
