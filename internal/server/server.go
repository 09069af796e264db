// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"agentdate/internal/cache"
	"agentdate/internal/config"
	"agentdate/internal/database"
	"agentdate/internal/middleware"
	"agentdate/internal/models"
	"agentdate/internal/repository"
	"agentdate/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo       repository.UserRepository
	agentRepo      repository.AgentRepository
	prefsRepo      repository.PreferencesRepository
	postRepo       repository.PostRepository
	complimentRepo repository.ComplimentRepository
	matchRepo      repository.MatchRepository
	eventRepo      repository.EventRepository

	agentService      service.AgentService
	postService       service.PostService
	complimentService service.ComplimentService
	matchService      service.MatchService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agentdate-api"),
		userRepo:       repository.NewUserRepository(db),
		agentRepo:      repository.NewAgentRepository(db),
		prefsRepo:      repository.NewPreferencesRepository(db),
		postRepo:       repository.NewPostRepository(db),
		complimentRepo: repository.NewComplimentRepository(db),
		matchRepo:      repository.NewMatchRepository(db),
		eventRepo:      repository.NewEventRepository(db),
	}

	s.agentService = service.NewAgentService(s.userRepo, s.agentRepo, s.prefsRepo, s.eventRepo)
	s.postService = service.NewPostService(s.postRepo, s.agentRepo)
	s.complimentService = service.NewComplimentService(db, s.complimentRepo, s.postRepo, s.agentRepo, s.eventRepo)
	s.matchService = service.NewMatchService(s.agentRepo, s.prefsRepo, s.matchRepo, s.eventRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	// Propagate request ID and identity into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Open routes: registration, claiming and public agent cards.
	api.Post("/agents/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.RegisterAgent)
	api.Post("/auth/claim", s.ClaimAccount)
	api.Get("/agents/:id", s.GetAgentCard)

	protected := api.Group("", s.AuthRequired())

	// Agent self-service routes
	agents := protected.Group("/agents")
	agents.Get("/me", s.GetMyAgent)
	agents.Put("/me", s.UpdateMyAgent)
	agents.Post("/me/activate", s.ActivateAgent)
	agents.Post("/me/deactivate", s.DeactivateAgent)
	agents.Get("/me/preferences", s.GetPreferences)
	agents.Put("/me/preferences", s.UpdatePreferences)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/", s.GetFeed)
	// Specific /:id/:resource routes before the generic /:id route
	posts.Get("/mine", s.GetMyPosts)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/compliments", middleware.RateLimit(
		s.redis, 10, time.Minute, "send_compliment"), s.SendCompliment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)

	// Compliment routes
	compliments := protected.Group("/compliments")
	compliments.Get("/", s.GetReceivedCompliments)
	compliments.Get("/sent", s.GetSentCompliments)
	compliments.Post("/:id/respond", s.RespondToCompliment)

	// Match routes
	protected.Post("/match/propose", middleware.RateLimit(
		s.redis, 20, time.Minute, "propose_match"), s.ProposeMatch)
	protected.Get("/matches", s.GetMatches)

	// Audit event feed
	protected.Get("/events", s.GetEvents)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; the server degrades to uncached, unthrottled mode.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "AgentDate API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
