package router

import (
	"restaurant_pos_backend/internal/handlers"
	"restaurant_pos_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Cashier"))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/next-number", orderHandler.PreviewOrderNumber)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.POST("/:id/cancel", orderHandler.CancelOrder)
	}
}

// SetupReportRoutes sets up the end-of-day report routes.
// Report generation and history are cashier-facing; deletion is admin only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware("Admin", "Cashier"))
	{
		reportRoutes.POST("/eod", reportHandler.GenerateEODReport)
		reportRoutes.GET("/eod", reportHandler.GetEODReports)
		reportRoutes.GET("/eod/next-number", reportHandler.PreviewReportNumber)
		reportRoutes.GET("/eod/:id", reportHandler.GetEODReportByID)
	}

	authenticatedGroup.DELETE("/reports/eod/:id", middleware.RoleAuthMiddleware("Admin"), reportHandler.DeleteEODReport)
}
