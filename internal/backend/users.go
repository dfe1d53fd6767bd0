package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/admin-console/internal/domain"
)

// MessageUserHasOrders is shown when the backend refuses to delete a user
// without saying why.
const MessageUserHasOrders = "The user cannot be deleted because they have orders."

// Users binds /user.
type Users struct{ c *Client }

// List returns every account.
func (u *Users) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := u.c.getJSON(ctx, "/user/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one account.
func (u *Users) Get(ctx context.Context, id int) (domain.User, error) {
	var out domain.User
	err := u.c.getJSON(ctx, fmt.Sprintf("/user/%d", id), &out)
	return out, err
}

// Create registers an account.
func (u *Users) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var out domain.User
	err := u.c.sendJSON(ctx, http.MethodPost, "/user", user, &out)
	return out, err
}

// Update replaces an account's editable fields.
func (u *Users) Update(ctx context.Context, id int, user domain.User) (domain.User, error) {
	var out domain.User
	err := u.c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/user/%d", id), user, &out)
	return out, err
}

// Delete removes an account.
func (u *Users) Delete(ctx context.Context, id int) error {
	return withFallback(u.c.delete(ctx, fmt.Sprintf("/user/%d", id)), MessageUserHasOrders)
}
