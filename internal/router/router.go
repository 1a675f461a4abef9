package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxmgr/internal/config"
	"boxmgr/internal/handler"
	"boxmgr/internal/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Box      *handler.BoxHandler
	Scan     *handler.ScanHandler
	Search   *handler.SearchHandler
	Setting  *handler.SettingHandler
	Health   *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/setup", h.Auth.Setup)
			auth.Get("/check-users", h.Auth.CheckUsers)
			auth.Get("/verify", h.Auth.Verify)
			auth.Post("/verify", h.Auth.Verify)
			auth.Post("/logout", h.Auth.Logout)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAdmin)
			users.Get("/", h.User.List)
			users.Post("/", h.User.Create)
			users.Get("/{id}", h.User.Get)
			users.Put("/{id}", h.User.Update)
			users.Delete("/{id}", h.User.Delete)
		})

		api.Group(func(private chi.Router) {
			private.Use(authMiddleware.RequireAuth)

			private.Route("/categories", func(categories chi.Router) {
				categories.Get("/", h.Category.List)
				categories.Post("/", h.Category.Create)
				categories.Get("/{id}", h.Category.Get)
				categories.Put("/{id}", h.Category.Update)
				categories.Delete("/{id}", h.Category.Delete)
			})

			private.Route("/boxes", func(boxes chi.Router) {
				boxes.Get("/", h.Box.List)
				boxes.Post("/", h.Box.Create)
				boxes.Get("/{id}", h.Box.Get)
				boxes.Put("/{id}", h.Box.Update)
				boxes.Delete("/{id}", h.Box.Delete)
				boxes.Post("/{id}/items", h.Box.AddItem)
				boxes.Delete("/{id}/items/{itemId}", h.Box.RemoveItem)
				boxes.Post("/{id}/scan", h.Scan.Scan)
			})

			private.Get("/search", h.Search.Search)
			private.Get("/print", h.Search.Print)

			private.Route("/settings", func(settings chi.Router) {
				settings.Get("/", h.Setting.List)
				settings.Post("/", h.Setting.Set)
				settings.Put("/{key}", h.Setting.Set)
			})
		})
	})

	return r
}
