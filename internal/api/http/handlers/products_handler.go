package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-console/internal/api/dto"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/service"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

const maxImageBytes = 5 << 20

// ProductsHandler exposes /product endpoints.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// List handles GET /product/all.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// Get handles GET /product/{id}.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// Create handles multipart POST /product.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	product, image, err := readProductForm(c)
	if err != nil {
		return err
	}
	created, err := h.catalog.CreateProduct(c.UserContext(), product, image)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(created)
}

// Update handles multipart PUT /product/{id}.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	product, image, err := readProductForm(c)
	if err != nil {
		return err
	}
	updated, err := h.catalog.UpdateProduct(c.UserContext(), id, product, image)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

// Delete handles DELETE /product/{id}.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// readProductForm reads the "product" JSON part and the optional "image" part.
func readProductForm(c *fiber.Ctx) (domain.Product, []byte, error) {
	raw := c.FormValue("product")
	if raw == "" {
		return domain.Product{}, nil, apperrors.NewValidationError("missing product part", nil)
	}
	product, err := dto.ParseProductPayload(raw)
	if err != nil {
		return domain.Product{}, nil, apperrors.NewValidationError(err.Error(), nil)
	}

	header, err := c.FormFile("image")
	if err != nil {
		return product, nil, nil
	}
	if header.Size > maxImageBytes {
		return domain.Product{}, nil, apperrors.NewValidationError("image too large", map[string]any{"size": header.Size})
	}
	f, err := header.Open()
	if err != nil {
		return domain.Product{}, nil, apperrors.NewInternalError(err)
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return domain.Product{}, nil, apperrors.NewInternalError(err)
	}
	return product, image, nil
}
