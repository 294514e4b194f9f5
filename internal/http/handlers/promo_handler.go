package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopreel/internal/services"
	"shopreel/internal/validate"
)

type PromoHandler struct {
	Promo *services.PromoService
}

// Validate handles POST /api/v1/promo/validate: pre-checkout check that a
// code is usable for a product and subtotal.
func (h *PromoHandler) Validate(c *fiber.Ctx) error {
	var body struct {
		Code      string          `json:"code"`
		ProductID string          `json:"productId"`
		Subtotal  decimal.Decimal `json:"subtotal"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}
	if body.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"code": "Promo code is required"}})
	}
	code, ok := validate.PromoCode(body.Code)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"code": "Invalid promo code"}})
	}

	policy, err := h.Promo.Resolve(code, body.ProductID, body.Subtotal, time.Now())
	if err != nil {
		return respondError(c, err)
	}

	discount := services.ComputeDiscount(policy, body.Subtotal)
	return c.JSON(fiber.Map{
		"msg":          "Promo code validated successfully",
		"code":         policy.Code,
		"discountType": policy.DiscountType,
		"discount":     discount,
	})
}
