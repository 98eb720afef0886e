package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"campushub/internal/adapters/http/middleware"
	"campushub/internal/adapters/http/routes"
	"campushub/internal/adapters/persistence/models"
	"campushub/internal/config"

	"github.com/gofiber/fiber/v2"
)

// @title CampusHub Portal API
// @version 1.0
// @description University portal backend: accounts, access control and administration.

// @host api.campushub.edu
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed runtime flags and the default organizer account
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed defaults: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CampusHub Portal API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Ambient middlewares
	middleware.Setup(app, cfg)

	// Routes + admission pipeline (returns the background janitor)
	janitor := routes.Setup(app, db, cfg)
	janitor.Start()
	defer janitor.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
