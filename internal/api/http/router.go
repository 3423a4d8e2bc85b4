package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontdesk-supervisor/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Knowledge *handlers.KnowledgeHandler
	Calls     *handlers.CallsHandler
	Dashboard *handlers.DashboardHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/calls", cfg.Calls.HandleCall)
	api.Get("/dashboard", cfg.Dashboard.Overview)

	tickets := api.Group("/tickets")
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Post("/sweep", cfg.Tickets.Sweep)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)

	knowledge := api.Group("/knowledge")
	knowledge.Get("", cfg.Knowledge.List)
	knowledge.Post("", cfg.Knowledge.Learn)
	knowledge.Get("/lookup", cfg.Knowledge.Lookup)
}
