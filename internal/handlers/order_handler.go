package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes. Every route needs a session;
// listing all orders and marking delivery are admin-only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", g.Protect, h.HandleCreateOrder)
	orderRoutes.Get("/", g.Protect, middleware.AdminOnly(), h.HandleGetOrders)
	orderRoutes.Get("/myorders", g.Protect, h.HandleGetMyOrders)
	orderRoutes.Get("/:id", g.Protect, h.HandleGetOrderByID)
	orderRoutes.Put("/:id/pay", g.Protect, h.HandlePayOrder)
	orderRoutes.Put("/:id/deliver", g.Protect, middleware.AdminOnly(), h.HandleDeliverOrder)
}

// HandleCreateOrder places an order from a checkout snapshot.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	order, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders lists every order with owner details.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.AllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(nonNil(orders))
}

func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.MyOrders(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(nonNil(orders))
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandlePayOrder marks an order paid. The payment confirmation body is
// optional.
func (h *OrderHandler) HandlePayOrder(c *fiber.Ctx) error {
	var result *models.PaymentResult
	if len(c.Body()) > 0 {
		var body models.PaymentResult
		if err := bind(c, h.validate, &body); err != nil {
			return err
		}
		if body != (models.PaymentResult{}) {
			result = &body
		}
	}

	order, err := h.service.MarkPaid(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), result)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleDeliverOrder(c *fiber.Ctx) error {
	order, err := h.service.MarkDelivered(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func nonNil(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	return orders
}
