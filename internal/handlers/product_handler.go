package handlers

import (
	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog, reviews and the
// seller dashboard.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product and seller routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", g.Optional, h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", g.Protect, middleware.AdminOrSeller(), h.HandleCreateProduct)
	productRoutes.Put("/:id", g.Protect, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", g.Protect, h.HandleDeleteProduct)
	productRoutes.Post("/:id/reviews", g.Protect, h.HandleCreateReview)

	router.Get("/sellers/dashboard", g.Protect, middleware.SellerOnly(), h.HandleSellerDashboard)
}

// HandleGetProducts lists the catalog. ?seller=me narrows it to the
// caller's own listings and requires a seller session.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var filter repositories.ProductFilter
	if c.Query("seller") == "me" {
		caller := middleware.CurrentUser(c)
		if caller == nil {
			return apperr.Unauthorized("Not authorized, no token")
		}
		if !caller.IsSeller {
			return apperr.Forbidden("Not authorized as a seller")
		}
		filter.SellerID = caller.ID
	}

	products, err := h.service.GetAllProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a listing owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

func (h *ProductHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if _, err := h.service.CreateReview(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review added"})
}

func (h *ProductHandler) HandleSellerDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(dashboard)
}
