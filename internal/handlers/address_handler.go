package handlers

import (
	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler exposes the caller's address book. Every response is the
// whole book: {addresses, defaultAddress}.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the address routes under /users/addresses.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, g Guards) {
	addresses := router.Group("/users/addresses")
	addresses.Get("/", g.Protect, h.HandleList)
	addresses.Post("/", g.Protect, h.HandleAdd)
	addresses.Put("/default/:idx", g.Protect, h.HandleSetDefault)
	addresses.Put("/:idx", g.Protect, h.HandleUpdate)
	addresses.Delete("/:idx", g.Protect, h.HandleRemove)
}

func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	book, err := h.service.List(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (h *AddressHandler) HandleAdd(c *fiber.Ctx) error {
	var addr models.Address
	if err := bind(c, h.validate, &addr); err != nil {
		return err
	}
	book, err := h.service.Add(c.UserContext(), middleware.CurrentUser(c).ID, addr)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	idx, err := addressIndex(c)
	if err != nil {
		return err
	}
	var addr models.Address
	if err := bind(c, h.validate, &addr); err != nil {
		return err
	}
	book, err := h.service.Update(c.UserContext(), middleware.CurrentUser(c).ID, idx, addr)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (h *AddressHandler) HandleRemove(c *fiber.Ctx) error {
	idx, err := addressIndex(c)
	if err != nil {
		return err
	}
	book, err := h.service.Remove(c.UserContext(), middleware.CurrentUser(c).ID, idx)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (h *AddressHandler) HandleSetDefault(c *fiber.Ctx) error {
	idx, err := addressIndex(c)
	if err != nil {
		return err
	}
	book, err := h.service.SetDefault(c.UserContext(), middleware.CurrentUser(c).ID, idx)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

// A non-numeric index cannot name an address.
func addressIndex(c *fiber.Ctx) (int, error) {
	idx, err := c.ParamsInt("idx")
	if err != nil {
		return 0, apperr.NotFound("Address not found")
	}
	return idx, nil
}
