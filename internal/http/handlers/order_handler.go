package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopreel/internal/domain"
	applog "shopreel/internal/log"
	"shopreel/internal/repos"
	"shopreel/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
	Repo  *repos.OrderRepo
}

// Place handles POST /api/v1/orders.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)

	var in services.PlaceOrderInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}

	o, err := h.Order.Place(u.ID, in)
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"buyer_id": u.ID, "error": err.Error()})
		return respondError(c, err)
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.Total.StringFixed(2),
		"method":   o.PaymentMethod,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg":   "Order placed successfully",
		"order": o,
	})
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u := currentUser(c)

	o, err := h.Order.Cancel(u.ID, c.Params("id"))
	if err != nil {
		applog.Security(c, "order.cancel.fail", map[string]any{"buyer_id": u.ID, "order_id": c.Params("id"), "error": err.Error()})
		return respondError(c, err)
	}

	applog.Audit(c, "order.cancel", map[string]any{"order_id": o.ID, "refund_status": o.RefundStatus})
	return c.JSON(fiber.Map{"msg": "Order cancelled successfully", "order": o})
}

// View handles GET /api/v1/orders/:id with an ownership check: buyers see
// their own orders, sellers the orders of their products.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)

	o, err := h.Repo.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if o.BuyerID != u.ID && o.SellerID != u.ID {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": o.ID, "user_id": u.ID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "Order not found"})
	}
	return c.JSON(fiber.Map{"order": o})
}

// History handles GET /api/v1/orders for the logged-in buyer.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)

	orders, err := h.Repo.ListByBuyer(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// SellerList handles GET /api/v1/seller/orders?status=&page=&limit=.
func (h *OrderHandler) SellerList(c *fiber.Ctx) error {
	u := currentUser(c)

	status := domain.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"status": "Unknown status"}})
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	orders, err := h.Repo.ListBySeller(u.ID, status, limit, (page-1)*limit)
	if err != nil {
		applog.Error(c, "orders.seller.list.fail", err, nil)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "page": page})
}

// UpdateStatus handles PATCH /api/v1/seller/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	u := currentUser(c)

	var body struct {
		Status domain.Status `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}

	o, err := h.Order.UpdateStatus(u.ID, c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, err)
	}

	applog.Audit(c, "order.status.update", map[string]any{"order_id": o.ID, "status": o.Status})
	return c.JSON(fiber.Map{"msg": "Order status updated successfully", "order": o})
}
