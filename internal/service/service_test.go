package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/auth"
	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/events"
	"github.com/spec-kit/admin-console/internal/repository"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
		SeedAdminEmail:        "admin@example.com",
		SeedAdminPassword:     "admin",
		SeedUserEmail:         "user@example.com",
		SeedUserPassword:      "user",
	}
}

func newSeeded(t *testing.T) (*AuthService, *CatalogService, CatalogDependencies) {
	t.Helper()
	deps := CatalogDependencies{
		Users:      repository.NewUserRepository(),
		Products:   repository.NewProductRepository(),
		Categories: repository.NewCategoryRepository(),
		Orders:     repository.NewOrderRepository(),
		Reviews:    repository.NewReviewRepository(),
	}
	authService := NewAuthService(testAuthConfig(), deps.Users, zap.NewNop())
	require.NoError(t, Seed(context.Background(), testAuthConfig(), deps, authService))
	return authService, NewCatalogService(deps, authService, zap.NewNop()), deps
}

func TestAuthService_Login(t *testing.T) {
	authService, _, _ := newSeeded(t)
	ctx := context.Background()

	result, err := authService.Login(ctx, domain.Credentials{Email: "admin@example.com", Password: "admin"})
	require.NoError(t, err)
	claims, err := authService.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, int64(5*60*1000), result.ExpiresIn)

	result, err = authService.Login(ctx, domain.Credentials{Email: "user@example.com", Password: "user"})
	require.NoError(t, err)
	claims, err = auth.DecodePayload(result.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.RoleUser}, claims.Roles)

	_, err = authService.Login(ctx, domain.Credentials{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, 401, apperrors.StatusOf(err))
	_, err = authService.Login(ctx, domain.Credentials{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, 401, apperrors.StatusOf(err))
	_, err = authService.Login(ctx, domain.Credentials{})
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestSeed_Idempotent(t *testing.T) {
	authService, catalog, deps := newSeeded(t)
	require.NoError(t, Seed(context.Background(), testAuthConfig(), deps, authService))

	users, err := catalog.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	categories, err := catalog.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCatalog_DeleteUserWithOrders(t *testing.T) {
	_, catalog, deps := newSeeded(t)
	ctx := context.Background()
	customer, err := deps.Users.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)

	err = catalog.DeleteUser(ctx, customer.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, MessageUserHasOrders, apperrors.ToDomainError(err).Message)

	created, err := catalog.CreateUser(ctx, domain.User{Email: "new@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.Equal(t, domain.UserRoleUser, created.Role)
	require.NoError(t, catalog.DeleteUser(ctx, created.ID))
	assert.ErrorIs(t, catalog.DeleteUser(ctx, created.ID), apperrors.ErrNotFound)
}

func TestCatalog_CreateUserValidation(t *testing.T) {
	_, catalog, _ := newSeeded(t)
	ctx := context.Background()

	_, err := catalog.CreateUser(ctx, domain.User{Email: "no-at-sign", Password: "x"})
	assert.Equal(t, 400, apperrors.StatusOf(err))
	_, err = catalog.CreateUser(ctx, domain.User{Email: "a@b.c"})
	assert.Equal(t, 400, apperrors.StatusOf(err))
	_, err = catalog.CreateUser(ctx, domain.User{Email: "admin@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCatalog_DeleteCategoryRemovesProducts(t *testing.T) {
	_, catalog, _ := newSeeded(t)
	ctx := context.Background()
	categories, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	tees := categories[0]

	count, err := catalog.CategoryProductCount(ctx, tees.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, catalog.DeleteCategory(ctx, tees.ID))
	products, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	reviews, err := catalog.ListReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	_, err = catalog.CategoryProductCount(ctx, tees.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalog_ProductStocksNormalized(t *testing.T) {
	_, catalog, _ := newSeeded(t)
	ctx := context.Background()

	created, err := catalog.CreateProduct(ctx, domain.Product{Name: "Polo", Price: 30, SizeStocks: map[string]int{"M": 2}}, []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Len(t, created.SizeStocks, len(domain.Sizes))
	assert.Equal(t, 0, created.SizeStocks["XS"])

	updated, err := catalog.UpdateProduct(ctx, created.ID, domain.Product{Name: "Polo 2", Price: 31}, nil)
	require.NoError(t, err)
	assert.Equal(t, created.Image, updated.Image)

	_, err = catalog.CreateProduct(ctx, domain.Product{Name: "Bad", CategoryIDs: []int{999}}, nil)
	assert.Equal(t, 400, apperrors.StatusOf(err))
	_, err = catalog.CreateProduct(ctx, domain.Product{Name: "Bad", SizeStocks: map[string]int{"M": -1}}, nil)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestCatalog_SetOrderState(t *testing.T) {
	_, catalog, _ := newSeeded(t)
	ctx := context.Background()

	order, err := catalog.SetOrderState(ctx, 3, "processing")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateProcessing, order.State)

	_, err = catalog.SetOrderState(ctx, 3, "teleported")
	assert.Equal(t, 400, apperrors.StatusOf(err))
	_, err = catalog.SetOrderState(ctx, 404, "SHIPPED")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNotificationService_RemembersEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	n := NewNotificationService(dispatcher, zap.NewNop(), 2)
	n.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTokenUpdated, events.ReasonLogin, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventStorageChanged, events.ReasonExternalDrop, nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTokenUpdated, events.ReasonLogout, nil)))

	recent := n.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, events.ReasonExternalDrop, recent[0].Reason)
	assert.Equal(t, events.ReasonLogout, recent[1].Reason)
}
