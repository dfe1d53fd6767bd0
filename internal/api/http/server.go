package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/api/http/handlers"
	"github.com/spec-kit/admin-console/internal/auth"
	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/observability"
	"github.com/spec-kit/admin-console/internal/repository"
	"github.com/spec-kit/admin-console/internal/service"
)

// NewApp builds the seeded dev backend: in-memory repositories, services and
// a fiber app with every route registered.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*fiber.App, error) {
	logger = observability.OrNop(logger)

	deps := service.CatalogDependencies{
		Users:      repository.NewUserRepository(),
		Products:   repository.NewProductRepository(),
		Categories: repository.NewCategoryRepository(),
		Orders:     repository.NewOrderRepository(),
		Reviews:    repository.NewReviewRepository(),
	}
	authService := service.NewAuthService(cfg.Auth, deps.Users, logger)
	if err := service.Seed(ctx, cfg.Auth, deps, authService); err != nil {
		return nil, fmt.Errorf("seed dev backend: %w", err)
	}
	catalog := service.NewCatalogService(deps, authService, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name + "-devbackend",
		DisableStartupMessage: true,
		BodyLimit:             8 << 20,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.Backend.RequestTimeout())
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Users:          handlers.NewUsersHandler(authService, catalog),
		Products:       handlers.NewProductsHandler(catalog),
		Categories:     handlers.NewCategoriesHandler(catalog),
		Orders:         handlers.NewOrdersHandler(catalog),
		Reviews:        handlers.NewReviewsHandler(catalog),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return app, nil
}
