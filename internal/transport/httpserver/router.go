// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"media-queue-service/internal/app/service"
	"media-queue-service/internal/transport/httpserver/dto"
	"media-queue-service/internal/transport/httpserver/handler"
	"media-queue-service/internal/transport/httpserver/middleware"
	"media-queue-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	FetchWait time.Duration
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	infoSvc *service.InfoService,
	queueSvc *service.QueueService,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "media-queue-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(infoSvc))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New())
	app.Use(compress.New())

	queueHandler := handler.NewQueueHandler(queueSvc, infoSvc, v, cfg.FetchWait, logger)
	infoHandler := handler.NewInfoHandler(infoSvc, v, logger)

	registerRoutes(app, queueHandler, infoHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(app *fiber.App, queueHandler *handler.QueueHandler, infoHandler *handler.InfoHandler) {
	// Health checks are handled by middleware (/livez, /readyz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	queues := v1.Group("/queues")
	queues.Post("/", queueHandler.Create)
	queues.Get("/:id", queueHandler.Get)
	queues.Delete("/:id", queueHandler.Delete)
	queues.Post("/:id/fetch", queueHandler.Fetch)
	queues.Post("/:id/advance", queueHandler.Advance)
	queues.Post("/:id/retreat", queueHandler.Retreat)
	queues.Post("/:id/reset", queueHandler.Reset)

	v1.Get("/info", infoHandler.GetInfo)

	cache := v1.Group("/cache")
	cache.Get("/", infoHandler.CacheStats)
	cache.Post("/trim", infoHandler.TrimCache)
	cache.Delete("/", infoHandler.ClearCache)
	cache.Delete("/entry", infoHandler.RemoveEntry)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
