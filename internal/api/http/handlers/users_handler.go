package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-console/internal/api/dto"
	"github.com/spec-kit/admin-console/internal/service"
)

// UsersHandler exposes login and account endpoints.
type UsersHandler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, catalog *service.CatalogService) *UsersHandler {
	return &UsersHandler{auth: authService, catalog: catalog}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Credentials())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// List handles GET /user/all.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.catalog.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Get handles GET /user/{id}.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	user, err := h.catalog.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Create handles POST /user.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.catalog.CreateUser(c.UserContext(), req.User())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(user)
}

// Update handles PUT /user/{id}.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.catalog.UpdateUser(c.UserContext(), id, req.User())
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Delete handles DELETE /user/{id}.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
