package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gadgetarian/service-tracker/internal/api/http/handlers"
	"github.com/gadgetarian/service-tracker/internal/auth"
	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Services       *handlers.ServicesHandler
	Public         *handlers.PublicHandler
	Technicians    *handlers.TechniciansHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	public := app.Group("/public/services")
	public.Get("/:code", cfg.Public.Track)
	public.Get("/:code/subscription", cfg.Public.Subscription)
	public.Post("/:code/subscription", cfg.Public.Subscribe)
	public.Delete("/:code/subscription", cfg.Public.Unsubscribe)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireRole())
	staff.Get("/services", cfg.Services.List)
	staff.Post("/services", cfg.Services.Create)
	staff.Get("/services/:id", cfg.Services.Get)
	staff.Patch("/services/:id", cfg.Services.Update)
	staff.Delete("/services/:id", cfg.Services.Delete)
	staff.Post("/services/:id/status", cfg.Services.AppendStatus)
	staff.Get("/services/:id/history", cfg.Services.History)

	if cfg.Technicians != nil {
		technicians := staff.Group("/technicians", auth.RequireRole(domain.RoleAdmin))
		technicians.Get("", cfg.Technicians.List)
		technicians.Post("", cfg.Technicians.Create)
	}
}
