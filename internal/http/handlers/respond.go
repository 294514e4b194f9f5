package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopreel/internal/apperr"
	applog "shopreel/internal/log"
)

// respondError maps the error taxonomy to HTTP in one place. Client-fixable
// kinds surface their message and kind; anything unrecognized is a 500 with
// no internal details leaked.
func respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		applog.Error(c, "server.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"msg": "Something went wrong. Please try again.",
		})
	}

	switch e.Kind {
	case apperr.Validation:
		fields := e.Fields
		if fields == nil {
			fields = map[string]string{"_": e.Error()}
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":   e.Kind,
			"errors": fields,
		})
	case apperr.NotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"kind": e.Kind, "msg": e.Error()})
	case apperr.InsufficientStock, apperr.InvalidPromoCode, apperr.TotalMismatch,
		apperr.InvalidPaymentSignature, apperr.InvalidTransition, apperr.CannotCancel:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"kind": e.Kind, "msg": e.Error()})
	default:
		applog.Error(c, "server.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"msg": "Something went wrong. Please try again.",
		})
	}
}
