package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopreel/internal/domain"
	applog "shopreel/internal/log"
	"shopreel/internal/repos"
	"shopreel/internal/validate"
)

type AddressHandler struct {
	Repo *repos.AddressRepo
}

// List handles GET /api/v1/addresses (default first).
func (h *AddressHandler) List(c *fiber.Ctx) error {
	u := currentUser(c)

	addrs, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		applog.Error(c, "addresses.list.fail", err, nil)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Addresses retrieved successfully", "addresses": addrs})
}

// Add handles POST /api/v1/addresses with per-field validation.
func (h *AddressHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)

	var body struct {
		Street         string `json:"address"`
		City           string `json:"city"`
		State          string `json:"state"`
		ZipCode        string `json:"zipCode"`
		AlternatePhone string `json:"alternatePhone"`
		IsDefault      bool   `json:"isDefault"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": "Invalid request body"})
	}

	errs := validate.Address(domain.AddressSnapshot{
		Street: body.Street, City: body.City, State: body.State,
		ZipCode: body.ZipCode, AlternatePhone: body.AlternatePhone,
	})
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	a := domain.Address{
		UserID:         u.ID,
		Street:         strings.TrimSpace(body.Street),
		City:           strings.TrimSpace(body.City),
		State:          strings.TrimSpace(body.State),
		ZipCode:        strings.TrimSpace(body.ZipCode),
		AlternatePhone: strings.TrimSpace(body.AlternatePhone),
		IsDefault:      body.IsDefault,
	}
	id, err := h.Repo.Create(a)
	if err != nil {
		applog.Error(c, "addresses.add.fail", err, nil)
		return respondError(c, err)
	}
	created, err := h.Repo.Get(id, u.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"msg": "Address added successfully", "address": created})
}

// Delete handles DELETE /api/v1/addresses/:id; removing the default
// promotes another remaining address.
func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)

	if err := h.Repo.Delete(c.Params("id"), u.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Address deleted successfully"})
}
