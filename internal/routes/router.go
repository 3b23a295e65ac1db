package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmuchai/Rent-Management-System-sub001/internal/handlers"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/middleware"
)

// SetupRoutes wires all application routes.
func SetupRoutes(r *gin.Engine) {
	// Public routes: login and liveness only.
	r.POST("/login", handlers.LoginHandler)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Everything else requires a valid token.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
