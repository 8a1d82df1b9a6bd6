package router

import (
	"database/sql"
	"net/http"
	"time"

	"restaurant_pos_backend/internal/handlers"
	"restaurant_pos_backend/internal/middleware"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, reportLocation *time.Location) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	counterRepo := repositories.NewCounterRepository(db)

	// Sequence providers: one per numbered entity, sharing the counter table.
	orderNumbers := services.NewSequenceService("ORD", repositories.CounterOrderNumber, counterRepo, orderRepo.LastOrderNumber)
	reportNumbers := services.NewSequenceService("EOD", repositories.CounterEODReport, counterRepo, reportRepo.LastReportNumber)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	orderService := services.NewOrderService(orderRepo, counterRepo, orderNumbers, db)
	reportService := services.NewReportService(orderRepo, reportRepo, counterRepo, reportNumbers, reportLocation, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reportHandler := handlers.NewReportHandler(reportService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}

// SetupPublicAuthRoutes registers the auth endpoints that do not require a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterUser)
	group.POST("/login", authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes registers the auth endpoints that require a token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
}
