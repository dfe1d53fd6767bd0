package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-console/internal/api/http/handlers"
	"github.com/spec-kit/admin-console/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Categories     *handlers.CategoriesHandler
	Orders         *handlers.OrdersHandler
	Reviews        *handlers.ReviewsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Catalog reads are public, account and
// order reads need any signed-in role, and every write needs ROLE_ADMIN.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)

	app.Post("/auth/login", cfg.Users.Login)

	app.Get("/product/all", cfg.Products.List)
	app.Get("/product/:id", cfg.Products.Get)
	app.Get("/category", cfg.Categories.List)
	app.Get("/category/:id", cfg.Categories.Get)

	signedIn := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}
	admin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleAdmin)}

	// /user/all must precede /user/:id.
	app.Get("/user/all", with(admin, cfg.Users.List)...)
	app.Get("/user/:id", with(signedIn, cfg.Users.Get)...)
	app.Post("/user", with(admin, cfg.Users.Create)...)
	app.Put("/user/:id", with(admin, cfg.Users.Update)...)
	app.Delete("/user/:id", with(admin, cfg.Users.Delete)...)

	app.Post("/product", with(admin, cfg.Products.Create)...)
	app.Put("/product/:id", with(admin, cfg.Products.Update)...)
	app.Delete("/product/:id", with(admin, cfg.Products.Delete)...)

	app.Get("/category/:id/products/count", with(signedIn, cfg.Categories.ProductCount)...)
	app.Post("/category", with(admin, cfg.Categories.Create)...)
	app.Put("/category/:id", with(admin, cfg.Categories.Update)...)
	app.Delete("/category/:id", with(admin, cfg.Categories.Delete)...)

	app.Get("/ordered", with(signedIn, cfg.Orders.List)...)
	app.Get("/ordered/:id", with(signedIn, cfg.Orders.Get)...)
	app.Put("/ordered/:id", with(admin, cfg.Orders.Update)...)
	app.Put("/ordered/:id/state", with(admin, cfg.Orders.SetState)...)

	app.Get("/review", with(admin, cfg.Reviews.List)...)
	app.Delete("/review/:id", with(admin, cfg.Reviews.Delete)...)
}

func with(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}
