package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
)

// RouterConfig carries the transport-level knobs for NewRouter.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter assembles the full HTTP API. Register and login are public;
// everything else requires a bearer token, and /admin additionally
// requires the admin flag.
func NewRouter(service bcms.Service, adminService admin.Service, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handleHealth)

	authHandler := NewAuthHandler(service)
	userHandler := NewUserHandler(service)
	clientHandler := NewClientHandler(service)
	categoryHandler := NewCategoryHandler(service)
	postHandler := NewPostHandler(service)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(service))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/search", userHandler.Search)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", clientHandler.List)
			r.Post("/", clientHandler.Create)
			r.Get("/{id}", clientHandler.Get)
			r.Put("/{id}", clientHandler.Update)
			r.Delete("/{id}", clientHandler.Delete)
			r.Get("/{id}/users", clientHandler.ListUsers)
			r.Post("/{id}/users/{userID}", clientHandler.AttachUser)
			r.Delete("/{id}/users/{userID}", clientHandler.DetachUser)
		})

		r.Route("/post-categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Post("/", categoryHandler.Create)
			r.Get("/{id}", categoryHandler.Get)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Post("/", postHandler.Create)
			r.Get("/{id}", postHandler.Get)
			r.Put("/{id}", postHandler.Update)
			r.Post("/{id}", postHandler.Update)
			r.Delete("/{id}", postHandler.Delete)
		})

		if adminService != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/stats", NewAdminHandler(adminService).Stats)
			})
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
