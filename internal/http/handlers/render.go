package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "gaadibazaar/internal/log"
	"gaadibazaar/internal/repos"
	"gaadibazaar/internal/services"
)

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// submitError maps pipeline errors to the envelope callers retry against:
// validation failures mean "fix your data", infrastructure failures mean
// "retry later", and the two must stay distinguishable.
func submitError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "submission rejected",
			"errors": verr.Issues,
		})
	case errors.Is(err, services.ErrQuotaExceeded):
		return jsonError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrPartnerNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrPartnerInactive):
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInfra):
		applog.Error(c, "ingest.infra.fail", err, nil)
		return jsonError(c, fiber.StatusBadGateway, "the system could not process your submission; please retry")
	case errors.Is(err, repos.ErrConflict):
		return jsonError(c, fiber.StatusConflict, err.Error())
	default:
		applog.Error(c, "ingest.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "unexpected error")
	}
}
