package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/admin-console/internal/domain"
)

// MessageCategoryDeleteFailed is shown when the backend refuses to delete a
// category without saying why.
const MessageCategoryDeleteFailed = "The category could not be deleted."

// Categories binds /category.
type Categories struct{ c *Client }

// List returns every category.
func (cs *Categories) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := cs.c.getJSON(ctx, "/category", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one category.
func (cs *Categories) Get(ctx context.Context, id int) (domain.Category, error) {
	var out domain.Category
	err := cs.c.getJSON(ctx, fmt.Sprintf("/category/%d", id), &out)
	return out, err
}

// Create adds a category.
func (cs *Categories) Create(ctx context.Context, name string) (domain.Category, error) {
	var out domain.Category
	err := cs.c.sendJSON(ctx, http.MethodPost, "/category", domain.Category{Name: name}, &out)
	return out, err
}

// Update renames a category.
func (cs *Categories) Update(ctx context.Context, id int, name string) (domain.Category, error) {
	var out domain.Category
	err := cs.c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/category/%d", id), domain.Category{ID: id, Name: name}, &out)
	return out, err
}

// ProductCount returns how many products reference the category.
func (cs *Categories) ProductCount(ctx context.Context, id int) (int, error) {
	var out int
	err := cs.c.getJSON(ctx, fmt.Sprintf("/category/%d/products/count", id), &out)
	return out, err
}

// Delete removes a category.
func (cs *Categories) Delete(ctx context.Context, id int) error {
	return withFallback(cs.c.delete(ctx, fmt.Sprintf("/category/%d", id)), MessageCategoryDeleteFailed)
}
