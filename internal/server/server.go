// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"shipits/internal/cache"
	"shipits/internal/config"
	"shipits/internal/database"
	"shipits/internal/middleware"
	"shipits/internal/models"
	"shipits/internal/observability"
	"shipits/internal/reminder"
	"shipits/internal/repository"
	"shipits/internal/service"
	"shipits/internal/summary"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SessionCookie is the name of the HTTP-only auth cookie.
const SessionCookie = "shipits_session"

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	commentRepo      repository.CommentRepository
	subscriptionRepo repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	eventRepo        repository.EventRepository
	summaryRepo      repository.SummaryRepository
	categoryRepo     repository.CategoryRepository

	userService         *service.UserService
	projectService      *service.ProjectService
	commentService      *service.CommentService
	subscriptionService *service.SubscriptionService
	notificationService *service.NotificationService
	eventService        *service.EventService
	analyticsService    *service.AnalyticsService
	summaryService      *service.SummaryService
	mediaService        *service.MediaService

	reminderScheduler *reminder.Scheduler
	stopReminders     func()
	tracingShutdown   func(context.Context) error
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("shipits-api"),

		userRepo:         repository.NewUserRepository(db),
		projectRepo:      repository.NewProjectRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		eventRepo:        repository.NewEventRepository(db),
		summaryRepo:      repository.NewSummaryRepository(db),
		categoryRepo:     repository.NewCategoryRepository(db),
	}

	server.userService = service.NewUserService(server.userRepo)
	server.notificationService = service.NewNotificationService(
		server.notificationRepo, server.subscriptionRepo, server.userRepo)
	server.projectService = service.NewProjectService(
		server.projectRepo, server.categoryRepo, server.notificationService, server.userService.IsAdmin)
	server.commentService = service.NewCommentService(
		server.commentRepo, server.projectRepo, server.notificationService, server.userService.IsAdmin)
	server.subscriptionService = service.NewSubscriptionService(
		server.subscriptionRepo, server.projectRepo, server.notificationService)
	server.eventService = service.NewEventService(
		server.eventRepo, server.categoryRepo, server.userService.IsAdmin)
	server.analyticsService = service.NewAnalyticsService(server.projectRepo)
	server.summaryService = service.NewSummaryService(
		server.summaryRepo, server.commentRepo, server.projectRepo, summary.NewClient(cfg))
	server.mediaService = service.NewMediaService(cfg)

	server.reminderScheduler = reminder.NewScheduler(server.eventRepo, server.notificationService)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Ship Its Metrics Dashboard",
	}))

	// Media files (content-addressed, immutable)
	app.Get("/media/:file", s.ServeMedia)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	// Public browse routes
	publicProjects := api.Group("/projects")
	publicProjects.Get("/", s.GetProjects)
	publicProjects.Get("/featured", s.GetFeaturedProjects)
	publicProjects.Get("/trending", s.GetTrendingProjects)
	publicProjects.Get("/:id/comments", s.GetComments)
	publicProjects.Get("/:id/summary", s.GetThreadSummary)
	publicProjects.Get("/:id", s.GetProject)

	api.Get("/categories", s.GetCategories)

	publicEvents := api.Group("/events")
	publicEvents.Get("/", s.GetEvents)
	publicEvents.Get("/:id", s.GetEvent)

	publicUsers := api.Group("/users")
	publicUsers.Get("/by-username/:username", s.GetUserByUsername)

	// Analytics intake is public: anonymous views and shares count too.
	api.Post("/projects/:id/view", s.RecordProjectView)
	api.Post("/projects/:id/share", s.RecordProjectShare)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Put("/me/theme", s.UpdateMyTheme)
	users.Get("/me/subscriptions", s.GetMySubscriptions)
	users.Get("/", s.GetAllUsers)
	users.Post("/:id/promote-admin", s.AdminRequired(), s.PromoteToAdmin)
	users.Post("/:id/demote-admin", s.AdminRequired(), s.DemoteFromAdmin)
	users.Get("/:id", s.GetUserProfile)

	projects := protected.Group("/projects")
	projects.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_project"), s.CreateProject)
	projects.Post("/:id/like", s.LikeProject)
	projects.Delete("/:id/like", s.UnlikeProject)
	projects.Post("/:id/subscribe", s.Subscribe)
	projects.Delete("/:id/subscribe", s.Unsubscribe)
	projects.Post("/:id/feature", s.AdminRequired(), s.FeatureProject)
	projects.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	projects.Put("/:id/comments/:commentId", s.UpdateComment)
	projects.Delete("/:id/comments/:commentId", s.DeleteComment)
	projects.Post("/:id/comments/:commentId/react", s.ReactToComment)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)

	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Get("/unread-count", s.GetUnreadCount)
	notificationsGroup.Post("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Post("/:id/read", s.MarkNotificationRead)
	notificationsGroup.Delete("/:id", s.DeleteNotification)

	events := protected.Group("/events")
	events.Post("/", s.CreateEvent)
	events.Post("/:id/rsvp", s.ToggleRSVP)
	events.Put("/:id", s.UpdateEvent)
	events.Delete("/:id", s.DeleteEvent)

	protected.Post("/media", middleware.RateLimit(
		s.redis, 10, time.Minute, "upload_media"), s.UploadMedia)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Post("/categories", s.CreateCategory)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: the
// API degrades (no cache, no rate limits, no session revocation) but stays up.
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.userService.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware. The session token is a
// JWT carried in an HTTP-only cookie; a Bearer header works too for
// non-browser clients.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := s.sessionToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		userID, ok := s.validateSession(c, tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired session"))
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// sessionToken extracts the raw session JWT from the cookie or, failing
// that, the Authorization header.
func (s *Server) sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// validateSession parses the session JWT, checks its claims, and checks the
// revocation list. Returns the authenticated user ID.
func (s *Server) validateSession(c *fiber.Ctx, tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "shipits-api" {
		return 0, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "shipits-client" {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}

	// Logout revokes the JTI; without Redis, revocation degrades to cookie
	// deletion only.
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		revoked, err := s.redis.Exists(c.Context(), cache.SessionRevokedKey(jti)).Result()
		if err == nil && revoked > 0 {
			return 0, false
		}
	}

	return uint(userID), true
}

// optionalUserID extracts the user from the session when present but never
// rejects; anonymous callers get (0, false).
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := s.sessionToken(c)
	if tokenString == "" {
		return 0, false
	}
	return s.validateSession(c, tokenString)
}

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "shipits-api",
		Environment:  s.config.Env,
		Enabled:      s.config.TracingEnabled,
		OTLPEndpoint: s.config.TracingEndpoint,
	})
	if err != nil {
		return err
	}
	s.tracingShutdown = tracingShutdown

	app := fiber.New(fiber.Config{
		AppName:   "Ship Its API",
		BodyLimit: 2 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	stop, err := s.reminderScheduler.Start(s.shutdownCtx)
	if err != nil {
		return err
	}
	s.stopReminders = stop

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.stopReminders != nil {
		s.stopReminders()
	}

	if s.tracingShutdown != nil {
		if terr := s.tracingShutdown(ctx); terr != nil {
			log.Printf("error shutting down tracing: %v", terr)
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
