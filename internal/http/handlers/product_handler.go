package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopreel/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// Detail handles GET /api/v1/products/:id (checkout price/stock lookup).
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Product retrieved successfully", "product": p})
}
