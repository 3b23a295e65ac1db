package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dmuchai/Rent-Management-System-sub001/internal/handlers"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/middleware"
)

// RegisterAPIRoutes registers the reconciliation API under /api.
func RegisterAPIRoutes(rg *gin.RouterGroup) {
	api := rg.Group("/api")

	// Payment events: ingestion plus audit views.
	api.POST("/payment-events", handlers.CreatePaymentEventHandler)
	api.GET("/payment-events", handlers.ListPaymentEventsHandler)
	api.GET("/payment-events/:id", handlers.GetPaymentEventHandler)

	// Manual review queue.
	api.GET("/review-queue", handlers.ListReviewQueueHandler)
	api.POST("/review-queue/:id/resolve",
		middleware.RoleMiddleware("admin", "caretaker"), handlers.ResolveReviewHandler)
	api.GET("/reports/review-queue.xlsx", handlers.ExportReviewQueueHandler)

	// Landlord payment channels.
	api.POST("/channels", middleware.RoleMiddleware("admin"), handlers.CreateChannelHandler)
	api.GET("/channels", handlers.ListChannelsHandler)
	api.POST("/channels/:id/deactivate", middleware.RoleMiddleware("admin"), handlers.DeactivateChannelHandler)

	// Live reconciliation outcome feed.
	api.GET("/feed/ws", handlers.FeedWSEndpoint)
}
