// Package http provides HTTP routing and middleware configuration
// for the cart service.
package http

import (
	"net/http"

	"github.com/avolkov/cartsync/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// cart API. It applies JSON content-type enforcement, request logging,
// and bearer-token authentication, and mounts the registration, login,
// and cart endpoints under /api.
//
// Routes:
//
//	POST   /api/register → authHandler.Register
//	POST   /api/login    → authHandler.Login
//	GET    /api/cart     → cartHandler.Get    (requires bearer token)
//	PUT    /api/cart     → cartHandler.Put    (requires bearer token)
//	DELETE /api/cart     → cartHandler.Delete (requires bearer token)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON requests
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. BearerAuth(tokens)                   — enforces bearer-token auth
func NewRouter(
	authHandler *AuthHandler,
	cartHandler *CartHandler,
	tokens middleware.TokenValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Enforce bearer-token authentication
	r.Use(middleware.BearerAuth(tokens))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Get("/cart", cartHandler.Get)
			r.Put("/cart", cartHandler.Put)
			r.Delete("/cart", cartHandler.Delete)
		})
	})

	return r
}
