package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "shopreel/internal/log"
	"shopreel/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

// Login handles POST /api/v1/login, binding the sid session to the user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(sid, body.Email, body.Password)
	if err != nil {
		applog.Security(c, "login.fail", map[string]any{"email": body.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "Invalid email or password"})
	}
	return c.JSON(fiber.Map{"msg": "Logged in", "user": fiber.Map{"id": u.ID, "name": u.Name, "role": u.Role}})
}

// Logout handles POST /api/v1/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = h.Auth.Logout(sid)
	}
	return c.JSON(fiber.Map{"msg": "Logged out"})
}
