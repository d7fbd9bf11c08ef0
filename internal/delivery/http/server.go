package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/delivery/http/handler"
	"github.com/parking-aggregator/internal/delivery/http/middleware"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	sourceHandler        *handler.SourceHandler
	siteDuplicateHandler *handler.DuplicateHandler
	spotDuplicateHandler *handler.DuplicateHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sourceHandler *handler.SourceHandler,
	siteDuplicateHandler *handler.DuplicateHandler,
	spotDuplicateHandler *handler.DuplicateHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName: "Parking Aggregator",
		// импорт крупного источника выполняется синхронно
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:                  app,
		config:               cfg,
		logger:               logger,
		sourceHandler:        sourceHandler,
		siteDuplicateHandler: siteDuplicateHandler,
		spotDuplicateHandler: spotDuplicateHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App возвращает fiber приложение (используется в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Sources
	api.Get("/sources", s.sourceHandler.List)
	api.Get("/sources/:uid", s.sourceHandler.Get)
	api.Post("/sources/:uid/import/static", s.sourceHandler.ImportStatic)
	api.Post("/sources/:uid/import/realtime", s.sourceHandler.ImportRealtime)

	// Duplicates
	sites := api.Group("/parking-sites/duplicates")
	sites.Post("/generate", s.siteDuplicateHandler.Generate)
	sites.Post("/apply", s.siteDuplicateHandler.Apply)
	sites.Post("/reset", s.siteDuplicateHandler.Reset)

	spots := api.Group("/parking-spots/duplicates")
	spots.Post("/generate", s.spotDuplicateHandler.Generate)
	spots.Post("/apply", s.spotDuplicateHandler.Apply)
	spots.Post("/reset", s.spotDuplicateHandler.Reset)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		if code == fiber.StatusNotFound {
			return utils.SendError(c, errors.ErrRouteNotFound)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
