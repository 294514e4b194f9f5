package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopreel/internal/domain"
	applog "shopreel/internal/log"
	"shopreel/internal/services"
)

// RequireUser resolves the sid cookie to a user and stores it in Locals.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Login required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireSeller additionally enforces the SELLER role.
func RequireSeller(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || !u.IsSeller() {
			applog.Security(c, "access.denied.seller", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"msg": "Seller access required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
