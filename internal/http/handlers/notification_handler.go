package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopreel/internal/log"
	"shopreel/internal/repos"
)

type NotificationHandler struct {
	Repo *repos.NotificationRepo
}

// List handles GET /api/v1/notifications (unread first).
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)

	limit := c.QueryInt("limit", 50)
	notifs, err := h.Repo.ListByUser(u.ID, limit)
	if err != nil {
		applog.Error(c, "notifications.list.fail", err, nil)
		return respondError(c, err)
	}
	unread, err := h.Repo.UnreadCount(u.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifs, "unread": unread})
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	u := currentUser(c)

	ok, err := h.Repo.MarkRead(c.Params("id"), u.ID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "Notification not found"})
	}
	return c.JSON(fiber.Map{"msg": "Notification marked as read"})
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	u := currentUser(c)

	if err := h.Repo.MarkAllRead(u.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "All notifications marked as read"})
}

// Delete handles DELETE /api/v1/notifications/:id.
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)

	ok, err := h.Repo.Delete(c.Params("id"), u.ID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "Notification not found"})
	}
	return c.JSON(fiber.Map{"msg": "Notification deleted"})
}
