package server

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/handler"
	"github.com/makeaparody/api/internal/middleware"
	"github.com/makeaparody/api/pkg/response"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Lyrics       *handler.LyricsHandler
	Instrumental *handler.InstrumentalHandler
	Parody       *handler.ParodyHandler
	Music        *handler.MusicHandler
	Session      *handler.SessionHandler
	// Health reports which upstreams are configured
	Health func() fiber.Map
}

// New builds the Fiber app with all routes mounted
func New(cfg *config.Config, h Handlers, rateLimiter *middleware.RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		services := fiber.Map{}
		if h.Health != nil {
			services = h.Health()
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"services": services,
		})
	})

	searchLimit := rateLimiter.SearchLimit(cfg.RateLimit.SearchPerMin)
	parodyLimit := rateLimiter.ParodyLimit(cfg.RateLimit.ParodyPerMin)
	musicLimit := rateLimiter.MusicLimit(cfg.RateLimit.MusicPerHour)

	// Stateless routes
	app.Get("/lyrics", searchLimit, h.Lyrics.Get)
	app.Get("/genius-lyrics", searchLimit, h.Lyrics.Get)
	app.Get("/instrumental-search", searchLimit, h.Instrumental.Search)
	app.Post("/parody-generate", parodyLimit, h.Parody.Generate)
	app.Post("/music-generate", musicLimit, h.Music.Generate)
	app.Get("/music-status/:taskId", h.Music.Status)
	app.Post("/music-callback", h.Music.Callback)

	// Session routes
	sessions := app.Group("/api/sessions")
	sessions.Post("/", h.Session.Create)
	sessions.Get("/:id", h.Session.Get)
	sessions.Delete("/:id", h.Session.Delete)
	sessions.Post("/:id/search", searchLimit, h.Session.Search)
	sessions.Post("/:id/parody", parodyLimit, h.Session.Parody)
	sessions.Post("/:id/music", musicLimit, h.Session.Music)
	sessions.Post("/:id/cancel", h.Session.Cancel)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/sessions/:id", h.Session.RequireSession, websocket.New(h.Session.Stream))

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if !errors.As(err, &e) {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return response.ServiceError(c, "Internal Server Error")
	}

	switch e.Code {
	case fiber.StatusNotFound:
		return response.NotFound(c, e.Message)
	case fiber.StatusInternalServerError:
		return response.ServiceError(c, e.Message)
	}
	return response.Error(c, e.Code, response.CodeServiceError, e.Message, nil)
}
