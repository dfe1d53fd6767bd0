package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-console/internal/api/dto"
	"github.com/spec-kit/admin-console/internal/service"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// OrdersHandler exposes /ordered endpoints.
type OrdersHandler struct {
	catalog *service.CatalogService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(catalog *service.CatalogService) *OrdersHandler {
	return &OrdersHandler{catalog: catalog}
}

// List handles GET /ordered.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	orders, err := h.catalog.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// Get handles GET /ordered/{id}.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	order, err := h.catalog.GetOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// Update handles PUT /ordered/{id}.
func (h *OrdersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.OrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.catalog.UpdateOrder(c.UserContext(), id, req.Order())
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// SetState handles PUT /ordered/{id}/state?state=.
func (h *OrdersHandler) SetState(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	state := c.Query("state")
	if state == "" {
		return apperrors.NewValidationError("state query parameter required", nil)
	}
	order, err := h.catalog.SetOrderState(c.UserContext(), id, state)
	if err != nil {
		return err
	}
	return c.JSON(order)
}
