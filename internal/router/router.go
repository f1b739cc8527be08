package router

import (
	"fmt"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/handlers"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/middleware"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the connections and services the routes are built from.
// Verifier and Media are optional.
type Dependencies struct {
	Postgres  *gorm.DB
	Mongo     *mongo.Database
	Verifier  handlers.IdentityVerifier
	Media     storage.MediaStore
	JWTSecret string
	Logger    *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.RequestLogger(logger))
	logger.Info("Global middleware configured")
}

// SetupRoutes migrates the relational schema, wires repositories into
// handlers and registers every route.
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	err := deps.Postgres.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Spot{},
		&models.Catch{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	deps.Logger.Info("PostgreSQL auto-migrations completed")

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewMongoPostRepository(deps.Mongo)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	catchRepo := repositories.NewPostgresCatchRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, deps.Verifier, deps.JWTSecret, deps.Logger).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))

	handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo).RegisterFeedRoutes(api)
	handlers.NewPostHandler(postRepo, commentRepo, userRepo, likeRepo, followRepo).RegisterPostRoutes(api)
	handlers.NewMediaHandler(deps.Media, deps.Logger).RegisterMediaRoutes(api)
	handlers.NewLikeHandler(likeRepo, postRepo, notificationRepo, deps.Logger).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, postRepo, notificationRepo, deps.Logger).RegisterCommentRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, notificationRepo, deps.Logger).RegisterFollowRoutes(api)
	handlers.NewProfileHandler(userRepo, catchRepo, deps.Logger).RegisterProfileRoutes(api)
	handlers.NewCatchHandler(catchRepo).RegisterCatchRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)

	deps.Logger.Info("All routes configured")
	return nil
}
