package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spec-kit/admin-console/internal/domain"
)

// Orders binds /ordered.
type Orders struct{ c *Client }

// List returns every order.
func (o *Orders) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := o.c.getJSON(ctx, "/ordered", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one order.
func (o *Orders) Get(ctx context.Context, id int) (domain.Order, error) {
	var out domain.Order
	err := o.c.getJSON(ctx, fmt.Sprintf("/ordered/%d", id), &out)
	return out, err
}

// Update replaces an order.
func (o *Orders) Update(ctx context.Context, id int, order domain.Order) (domain.Order, error) {
	var out domain.Order
	err := o.c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/ordered/%d", id), order, &out)
	return out, err
}

// SetState moves an order to state.
func (o *Orders) SetState(ctx context.Context, id int, state domain.OrderState) (domain.Order, error) {
	var out domain.Order
	path := fmt.Sprintf("/ordered/%d/state?%s", id, url.Values{"state": {string(state)}}.Encode())
	err := o.c.do(ctx, request{method: http.MethodPut, path: path}, &out)
	return out, err
}
