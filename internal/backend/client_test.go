package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "github.com/spec-kit/admin-console/internal/api/http"
	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/gate"
	"github.com/spec-kit/admin-console/internal/session"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

type fixture struct {
	client *Client
	gate   *gate.Gate
	store  *session.MemoryStore
	paths  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "admin-console", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "client-secret",
			AccessTokenTTLMinutes: 10,
			BcryptCost:            4,
			SeedAdminEmail:        "admin@example.com",
			SeedAdminPassword:     "admin",
			SeedUserEmail:         "user@example.com",
			SeedUserPassword:      "user",
		},
	}
	app, err := httptransport.NewApp(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	f := &fixture{store: session.NewMemoryStore()}
	g, err := gate.New(gate.Options{
		Store:     f.store,
		BaseURL:   srv.URL,
		Navigator: gate.NavigatorFunc(func(path string, _ gate.NavigationMode) { f.paths = append(f.paths, path) }),
	})
	require.NoError(t, err)
	f.gate = g
	f.client = New(g.HTTPClient(), srv.URL, nil)
	return f
}

func (f *fixture) loginAdmin(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gate.Login(context.Background(), domain.Credentials{Email: "admin@example.com", Password: "admin"}))
}

func TestClient_PublicReadsWithoutSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products, err := f.client.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	categories, err := f.client.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestClient_ProtectedReadDropsMissingSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Reviews.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsSessionError(err))
	assert.Equal(t, []string{"/auth/login"}, f.paths)
}

func TestClient_AdminCRUD(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	category, err := f.client.Categories.Create(ctx, "Caps")
	require.NoError(t, err)
	assert.Equal(t, "Caps", category.Name)

	product, err := f.client.Products.Create(ctx, domain.Product{
		Name:        "Snapback",
		Price:       15,
		Quantity:    4,
		CategoryIDs: []int{category.ID},
		SizeStocks:  map[string]int{"M": 4},
	}, &Image{Data: []byte("\x89PNG\r\n\x1a\n0000")})
	require.NoError(t, err)
	assert.Equal(t, 4, product.SizeStocks["M"])
	assert.NotEmpty(t, product.Image)

	count, err := f.client.Categories.ProductCount(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	product.Name = "Snapback Pro"
	updated, err := f.client.Products.Update(ctx, product.ID, product, nil)
	require.NoError(t, err)
	assert.Equal(t, "Snapback Pro", updated.Name)
	assert.NotEmpty(t, updated.Image, "update without image keeps the stored one")

	require.NoError(t, f.client.Categories.Delete(ctx, category.ID))
	_, err = f.client.Products.Get(ctx, product.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestClient_DeleteUserWithOrdersReportsConflict(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	users, err := f.client.Users.List(ctx)
	require.NoError(t, err)
	var customerID int
	for _, u := range users {
		if u.Role == domain.UserRoleUser {
			customerID = u.ID
		}
	}
	require.NotZero(t, customerID)

	err = f.client.Users.Delete(ctx, customerID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.False(t, apperrors.IsSessionError(err))
	assert.True(t, f.gate.IsAuthenticated(ctx), "a conflict must not end the session")
}

func TestClient_OrderState(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	orders, err := f.client.Orders.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, orders)

	order, err := f.client.Orders.SetState(ctx, orders[0].ID, domain.OrderStateCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateCancelled, order.State)

	_, err = f.client.Orders.Get(ctx, 9999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestClient_RevokedSessionRedirects(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	// A token the backend cannot verify stands in for a revoked one.
	require.NoError(t, f.store.Set(ctx, "token", "eyJhbGciOiJIUzI1NiJ9.eyJleHAiOjQxMDI0NDQ4MDB9.bad"))

	_, err := f.client.Users.List(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusOf(err))
	assert.False(t, f.gate.IsAuthenticated(ctx))
	assert.Equal(t, "/auth/login", f.paths[len(f.paths)-1])
}

func TestWithFallback(t *testing.T) {
	err := withFallback(apperrors.FromStatus(http.StatusConflict, ""), "custom")
	assert.Equal(t, "custom", apperrors.ToDomainError(err).Message)

	err = withFallback(apperrors.FromStatus(http.StatusConflict, "from server"), "custom")
	assert.Equal(t, "from server", apperrors.ToDomainError(err).Message)

	err = withFallback(apperrors.FromStatus(http.StatusForbidden, ""), "custom")
	assert.Equal(t, http.StatusText(http.StatusForbidden), apperrors.ToDomainError(err).Message)

}
