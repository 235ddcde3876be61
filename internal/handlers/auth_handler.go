package handlers

import (
	"time"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration, login/logout and the caller's profile.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks the session
// cookie Secure; it is off only in development.
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      newValidator(),
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers the authentication routes under /users.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, g Guards) {
	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Post("/logout", h.HandleLogout)
	users.Get("/profile", g.Protect, h.HandleGetProfile)
	users.Put("/profile", g.Protect, h.HandleUpdateProfile)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister creates an account and starts a session.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		return err
	}

	h.setSession(c, token)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks credentials and sets the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSession(c, token)
	return c.JSON(user)
}

// HandleLogout expires the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleGetProfile returns the caller.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateProfile updates the caller's name, email or password.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(h.authService.TokenTTL()),
	})
}

// UserHandler handles the admin user-management routes.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the admin routes under /users. Mount after the
// AuthHandler and AddressHandler routes so /users/profile and
// /users/addresses are not taken for ids.
func (h *UserHandler) RegisterRoutes(router fiber.Router, g Guards) {
	users := router.Group("/users")
	adminOnly := middleware.AdminOnly()
	users.Get("/", g.Protect, adminOnly, h.HandleListUsers)
	users.Get("/:id", g.Protect, adminOnly, h.HandleGetUser)
	users.Put("/:id", g.Protect, adminOnly, h.HandleUpdateUser)
	users.Delete("/:id", g.Protect, adminOnly, h.HandleDeleteUser)
	users.Put("/:id/seller", g.Protect, adminOnly, h.HandleMakeSeller)
}

func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req services.AdminUserUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User removed"})
}

// HandleMakeSeller grants the seller role; the body is optional.
func (h *UserHandler) HandleMakeSeller(c *fiber.Ctx) error {
	var req services.SellerProfile
	if len(c.Body()) > 0 {
		if err := bind(c, h.validate, &req); err != nil {
			return err
		}
	}
	user, err := h.service.MakeSeller(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
