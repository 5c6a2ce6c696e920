package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/emporia-shop/emporia-backend/internal/handlers"
	"github.com/emporia-shop/emporia-backend/internal/middleware"
	"github.com/emporia-shop/emporia-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, auth *handlers.AuthHandler, catalog *handlers.CatalogHandler, sessions *services.SessionManager, loginPath string) {
	// Auth routes
	r.Post("/api/auth/register", auth.Register)
	r.Post("/api/auth/login", auth.Login)
	r.Post("/api/auth/logout", auth.Logout)

	// Public catalog routes
	r.Get("/api/shop", catalog.Shop)
	r.Get("/api/shop/{id}", catalog.ShopItem)
	r.Get("/api/categories", catalog.Categories)

	// Gated routes: anonymous requests are redirected to the login page
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(sessions, loginPath))

		r.Get("/api/auth/me", auth.Me)
		r.Get("/api/auth/history", auth.History)

		r.Get("/api/items", catalog.Items)
		r.Post("/api/items", catalog.AddItem)
		r.Delete("/api/items/{id}", catalog.DeleteItem)
		r.Post("/api/categories", catalog.AddCategory)
		r.Delete("/api/categories/{id}", catalog.DeleteCategory)

		r.Post("/api/upload", catalog.Upload)
	})
}
