package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/camilovelasq/tienda-backend/internal/auth"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Auth        *AuthHandler
	Products    *ProductHandler
	Categories  *CategoryHandler
	Cart        *CartHandler
	Orders      *OrderHandler
	Tokens      *auth.TokenManager
	Development bool
}

// NewRouter mounts all routes in three tiers: public, authenticated, staff.
func NewRouter(deps RouterDeps) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public surface.
	deps.Auth.RegisterPublicRoutes(router)
	deps.Products.RegisterPublicRoutes(router)
	deps.Categories.RegisterPublicRoutes(router)
	deps.Orders.RegisterPublicRoutes(router)

	// Authenticated surface.
	router.Group(func(r chi.Router) {
		r.Use(Authenticate(deps.Tokens, deps.Development))
		deps.Auth.RegisterProtectedRoutes(r)
		deps.Cart.RegisterRoutes(r)
		deps.Orders.RegisterProtectedRoutes(r)

		// Staff surface.
		r.Group(func(staff chi.Router) {
			staff.Use(RequireStaff(deps.Development))
			deps.Products.RegisterStaffRoutes(staff)
			deps.Categories.RegisterStaffRoutes(staff)
			deps.Orders.RegisterStaffRoutes(staff)
		})
	})

	return router
}
