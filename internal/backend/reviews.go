package backend

import (
	"context"
	"fmt"

	"github.com/spec-kit/admin-console/internal/domain"
)

// Reviews binds /review.
type Reviews struct{ c *Client }

// List returns every review.
func (r *Reviews) List(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	if err := r.c.getJSON(ctx, "/review", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a review.
func (r *Reviews) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, fmt.Sprintf("/review/%d", id))
}
