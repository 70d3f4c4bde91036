package main

import (
	"notedash/cmd/server/handlers"
	"notedash/cmd/server/handlers/bridge"
	"notedash/cmd/server/handlers/changes"
	"notedash/cmd/server/handlers/httperr"
	notesHandlers "notedash/cmd/server/handlers/notes"
	postsHandlers "notedash/cmd/server/handlers/posts"
	travelHandlers "notedash/cmd/server/handlers/travel"
	"notedash/cmd/server/middlewares"
	"notedash/internal/config"
	"notedash/internal/ipc"
	"notedash/internal/logger"
	"notedash/internal/services/records"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// routerDeps is everything the routes are served from
type routerDeps struct {
	store   *records.Store
	hub     *records.Hub
	backend string
	health  handlers.HealthCheck
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, deps routerDeps) *fiber.App {
	v := records.NewValidator()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, deps.hub)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz(deps.backend, deps.health))

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	notesH := notesHandlers.NewHandlers(deps.store.Notes, v)
	notesGrp := v1.Group("/notes")
	notesGrp.Get("/", notesH.List)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)

	postsH := postsHandlers.NewHandlers(deps.store.Posts, v)
	postsGrp := v1.Group("/posts")
	postsGrp.Get("/", postsH.List)
	postsGrp.Post("/", postsH.Create)
	// fixed segments before /:id
	postsGrp.Get("/featured", postsH.Featured)
	postsGrp.Get("/recent", postsH.Recent)
	postsGrp.Get("/:id", postsH.Get)
	postsGrp.Patch("/:id", postsH.Update)
	postsGrp.Delete("/:id", postsH.Delete)
	postsGrp.Post("/:id/reactions/:kind", postsH.React)
	postsGrp.Post("/:id/like", postsH.Like)
	postsGrp.Post("/:id/comments", postsH.Comment)

	travelH := travelHandlers.NewHandlers(deps.store.Travel, v)
	travelGrp := v1.Group("/travel")
	travelGrp.Get("/", travelH.List)
	travelGrp.Post("/", travelH.Create)
	travelGrp.Get("/:id", travelH.Get)
	travelGrp.Patch("/:id", travelH.Update)
	travelGrp.Delete("/:id", travelH.Delete)

	// WebSocket routes
	wsHandlers := changes.NewWebSocketHandlers(deps.hub, cfg.WSMaxSessionSec)
	app.Use("/ws", changes.LogWSConnections())
	app.Get("/ws/changes", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSChangesStream))

	// Note editing for view processes, see cmd/notepad
	ipcHandlers := bridge.NewHandlers(ipc.NewBridge(deps.store.Notes, logger.L()))
	app.Get("/ipc", ipcHandlers.WSUpgrade, websocket.New(ipcHandlers.WSServe))

	return app
}
