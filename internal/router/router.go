package router

import (
	"time"

	"github.com/anonto42/circle/backend/internal/handlers"
	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/pkg/config"
	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/anonto42/circle/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// Dependencies are the external collaborators the routes are built on.
// Firebase may be nil, which disables Firebase login.
type Dependencies struct {
	Config   *config.Config
	DB       *config.DB
	Firebase services.FirebaseVerifier
	Mailer   services.Mailer
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger())
	e.Use(eMiddleware.ContextTimeout(requestTimeout))
	logger.Log.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	cfg := deps.Config

	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB.Postgres)
	postRepo := repositories.NewMongoPostRepository(deps.DB.MongoDB)
	commentRepo := repositories.NewMongoCommentRepository(deps.DB.MongoDB)
	followRepo := repositories.NewMongoFollowRepository(deps.DB.MongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(deps.DB.MongoDB)

	// --- Services ---
	opts := []services.Option{services.WithLogger(logger.Log)}
	notificationService := services.NewNotificationService(notificationRepo, opts...)
	tokens := services.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, nil)
	authService := services.NewAuthService(userRepo, tokens, deps.Firebase, deps.Mailer, opts...)
	userService := services.NewUserService(userRepo, opts...)
	postService := services.NewPostService(postRepo, followRepo, userRepo, notificationService, services.PostLimits{
		MaxContentLength: cfg.Limits.MaxContentLength,
		MaxImages:        cfg.Limits.MaxImages,
		MaxPostsPerHour:  cfg.Limits.MaxPostsPerHour,
	}, opts...)
	commentService := services.NewCommentService(commentRepo, postRepo, followRepo, notificationService, cfg.Limits.MaxCommentLength, opts...)
	relationshipService := services.NewRelationshipService(followRepo, userRepo, notificationService, opts...)

	pages := PageSizes(cfg.Pages)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authGroup.Use(middleware.RateLimit(authRateLimiterStore(deps), "auth"))
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(tokens, authService))

	authHandler.RegisterProtectedAuthRoutes(api)
	handlers.NewUserHandler(userService).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postService, userService, pages).RegisterPostRoutes(api)
	handlers.NewLikeHandler(postService, commentService).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentService, userService, pages).RegisterCommentRoutes(api)
	handlers.NewFollowHandler(relationshipService, pages).RegisterFollowRoutes(api)
	handlers.NewNotificationHandler(notificationService, userService, pages).RegisterNotificationRoutes(api)

	logger.Log.Info("routes configured", zap.Int("routes", len(e.Routes())))
}

// PageSizes maps the configured page sizes onto the handler settings.
func PageSizes(p config.PageConfig) handlers.PageSizes {
	return handlers.PageSizes{
		Followers:     p.Followers,
		Following:     p.Following,
		Comments:      p.Comments,
		Posts:         p.Posts,
		Notifications: p.Notifications,
		Max:           p.Max,
	}
}

func authRateLimiterStore(deps Dependencies) eMiddleware.RateLimiterStore {
	rate := deps.Config.AuthRate
	if deps.DB.Redis != nil {
		return middleware.NewRedisRateLimiterStore(deps.DB.Redis, "auth", rate.Limit, rate.Window)
	}
	logger.Log.Warn("redis not configured, auth rate limits are per instance")
	return middleware.NewMemoryRateLimiterStore(rate.Limit, rate.Window)
}
