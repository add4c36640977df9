package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "gaadibazaar/internal/log"
	"gaadibazaar/internal/services"
	"gaadibazaar/internal/validate"
)

type FeedHandler struct {
	Feed *services.FeedService
}

// GET /api/v1/partners/:id/feed
func (h *FeedHandler) Generate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid partner id")
	}
	feed, summary, err := h.Feed.Generate(id)
	if err != nil {
		applog.Error(c, "feed.generate.fail", err, map[string]any{"partner_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not generate feed")
	}
	return c.JSON(fiber.Map{"feed": feed, "errors": summary})
}
