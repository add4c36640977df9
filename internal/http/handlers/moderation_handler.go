package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "gaadibazaar/internal/log"
	"gaadibazaar/internal/services"
	"gaadibazaar/internal/validate"
)

type ModerationHandler struct {
	Moderation *services.ModerationService
}

// POST /admin/vehicles/:id/state
func (h *ModerationHandler) SetState(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid vehicle id")
	}
	var body struct {
		State string `json:"state"`
	}
	if err := c.BodyParser(&body); err != nil || body.State == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing target state")
	}

	v, err := h.Moderation.SetState(id, body.State)
	if errors.Is(err, sql.ErrNoRows) {
		return jsonError(c, fiber.StatusNotFound, "vehicle not found")
	}
	if err != nil {
		applog.Error(c, "moderation.state.fail", err, map[string]any{"vehicle_id": id, "state": body.State})
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	applog.Audit(c, "moderation.state", map[string]any{"vehicle_id": id, "state": v.Status})
	return c.JSON(fiber.Map{"vehicle_id": v.ID, "status": v.Status})
}
