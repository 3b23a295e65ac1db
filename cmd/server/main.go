package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/handlers"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/routes"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	config.LoadJWTKey()
	config.ConnectDB()
	config.ConnectRedis()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.Tenant{},
		&models.Lease{},
		&models.Invoice{},
		&models.LandlordPaymentChannel{},
		&models.PaymentEvent{},
	)
	if err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	go handlers.Feed.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := config.Getenv("PORT", "8080")
	slog.Info("Starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
