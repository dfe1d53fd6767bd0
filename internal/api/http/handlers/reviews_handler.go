package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-console/internal/service"
)

// ReviewsHandler exposes /review endpoints.
type ReviewsHandler struct {
	catalog *service.CatalogService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(catalog *service.CatalogService) *ReviewsHandler {
	return &ReviewsHandler{catalog: catalog}
}

// List handles GET /review.
func (h *ReviewsHandler) List(c *fiber.Ctx) error {
	reviews, err := h.catalog.ListReviews(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(reviews)
}

// Delete handles DELETE /review/{id}.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteReview(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
