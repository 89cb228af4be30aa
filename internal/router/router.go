package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sociogram/backend/internal/events"
	"github.com/sociogram/backend/internal/handlers"
	"github.com/sociogram/backend/internal/middleware"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
	"github.com/sociogram/backend/internal/ws"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logrus.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, hub *ws.Hub, dispatcher *events.Dispatcher, firebaseAuthClient *auth.Client, jwtSecret string) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reply{},
		&models.Like{},
		&models.OutboxEvent{},
	)
	if err != nil {
		logrus.Fatalf("Failed to auto migrate models: %v", err)
	}
	logrus.Info("PostgreSQL auto-migrations completed for all models.")

	store := repositories.NewGormStore(db)
	broadcaster := events.NewBroadcaster()

	// Health check and realtime channel - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/ws", ws.ServeWS(hub))
	logrus.Info("Websocket endpoint configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(store, firebaseAuthClient, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	logrus.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))

	userHandler := handlers.NewUserHandler(store)
	userHandler.RegisterUserRoutes(api)
	logrus.Info("User profile routes configured.")

	postHandler := handlers.NewPostHandler(store)
	postHandler.RegisterPostRoutes(api)
	logrus.Info("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(store, broadcaster, dispatcher)
	commentHandler.RegisterCommentRoutes(api)
	logrus.Info("Comment routes configured.")

	likeHandler := handlers.NewLikeHandler(store, broadcaster, dispatcher)
	likeHandler.RegisterLikeRoutes(api)
	logrus.Info("Like routes configured.")

	logrus.Info("All routes configured.")
}
