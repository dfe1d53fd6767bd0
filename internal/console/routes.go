package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Protected view paths.
const (
	PathHome        = "/"
	PathProducts    = "/products"
	PathProductNew  = "/products/new"
	PathCategories  = "/categories"
	PathCategoryNew = "/categories/new"
	PathUsers       = "/users"
	PathOrders      = "/orders"
	PathReviews     = "/reviews"
)

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Get(a.gate.LoginView(), a.handle(loginView))

	// Everything else, unknown paths included, sits behind the session.
	r.Group(func(r chi.Router) {
		r.Use(a.requireSession)
		r.Get(PathHome, a.handle(productsView))
		r.Get(PathProducts, a.handle(productsView))
		r.Get(PathProductNew, a.handle(productFormView))
		r.Get(PathProducts+"/{id}", a.handle(productView))
		r.Get(PathCategories, a.handle(categoriesView))
		r.Get(PathCategoryNew, a.handle(categoryFormView))
		r.Get(PathCategories+"/{id}", a.handle(categoryView))
		r.Get(PathUsers, a.handle(usersView))
		r.Get(PathUsers+"/{id}", a.handle(userView))
		r.Get(PathOrders, a.handle(ordersView))
		r.Get(PathOrders+"/{id}", a.handle(orderView))
		r.Get(PathReviews, a.handle(reviewsView))
		r.NotFound(a.handle(notFoundView))
	})
	return r
}

// requireSession redirects to the login view when no token is stored.
func (a *App) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.gate.IsAuthenticated(r.Context()) {
			if m, ok := r.Context().Value(matchKey{}).(*match); ok {
				m.redirect = a.gate.LoginView()
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) handle(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := r.Context().Value(matchKey{}).(*match)
		if !ok {
			return
		}
		m.view = v
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				m.params[key] = rctx.URLParams.Values[i]
			}
		}
	}
}
