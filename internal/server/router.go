package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nutricalc/internal/handlers"
	applog "nutricalc/internal/log"
)

func newRouter(limiter *clientLimiter) http.Handler {
	r := chi.NewRouter()
	applog.Debug(context.Background(), "registering http routes")

	r.Get("/healthz", handlers.Health)
	r.Get("/docs", handlers.Docs)
	r.Handle("/metrics", promhttp.Handler())
	applog.Debug(context.Background(), "route registered", "path", "/healthz")

	r.Route("/auth", func(r chi.Router) {
		r.With(limiter.middleware).Post("/register", handlers.Register)
		r.With(limiter.middleware).Post("/login", handlers.Login)
		r.Post("/logout", handlers.Logout)
		r.Get("/me", handlers.Me)
	})
	applog.Debug(context.Background(), "route registered", "path", "/auth", "rateLimited", true)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", handlers.RequireAuthentication(handlers.ListIngredients))
			r.Post("/", handlers.RequireAuthentication(handlers.CreateIngredient))
			r.Get("/{id}", handlers.RequireAuthentication(handlers.ShowIngredient))
			r.Put("/{id}", handlers.RequireAuthentication(handlers.UpdateIngredient))
			r.Delete("/{id}", handlers.RequireAuthentication(handlers.DeleteIngredient))
		})
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", handlers.RequireAuthentication(handlers.ListRecipes))
			r.Post("/", handlers.RequireAuthentication(handlers.CreateRecipe))
			r.Get("/{id}", handlers.RequireAuthentication(handlers.ShowRecipe))
			r.Put("/{id}", handlers.RequireAuthentication(handlers.UpdateRecipe))
			r.Delete("/{id}", handlers.RequireAuthentication(handlers.DeleteRecipe))
		})
	})
	applog.Debug(context.Background(), "route registered", "path", "/api", "protected", true)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
