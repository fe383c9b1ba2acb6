package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mihirk/taskman-api/internal/api"
	apiMiddleware "github.com/mihirk/taskman-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskStore, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore)

	// Public endpoints
	r.Post("/users", userHandler.Register)
	r.Post("/users/login", userHandler.Login)
	r.Get("/users/{id}/avatar", userHandler.GetAvatar)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/users/logout", userHandler.Logout)
		r.Post("/users/logoutAll", userHandler.LogoutAll)
		r.Get("/users/me", userHandler.Me)
		r.Patch("/users/me", userHandler.Update)
		r.Delete("/users/me", userHandler.Delete)
		r.Post("/users/me/avatar", userHandler.UploadAvatar)
		r.Delete("/users/me/avatar", userHandler.DeleteAvatar)

		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Patch("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
