package routes

import (
	"campushub/internal/adapters/http/handlers"
	"campushub/internal/adapters/http/middleware"
	"campushub/internal/adapters/persistence/repositories"
	"campushub/internal/config"
	"campushub/internal/core/domain"
	"campushub/internal/core/services"
	"campushub/internal/pkg/geofence"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services, the admission pipeline and all routes.
// Pipeline stage order matters and is fixed here: maintenance gate, then
// geofence, then (per group) authentication and role sufficiency. Minimum
// roles are declared on route groups, not discovered at runtime.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.JanitorService {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	configRepo := repositories.NewConfigRepository(db)

	// Services
	verificationService := services.NewVerificationService()
	configService := services.NewConfigService(configRepo)
	mailer := services.NewLogMailer()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, verificationService, configService, mailer, cfg)
	userService := services.NewUserService(userRepo)
	janitor := services.NewJanitorService(verificationService, refreshTokenRepo)

	// Geofence evaluator over the startup config snapshot
	fence := geofence.NewEvaluator(geofence.Config{
		Enabled:      cfg.GeoFence.Enabled,
		CenterLat:    cfg.GeoFence.CenterLat,
		CenterLng:    cfg.GeoFence.CenterLng,
		RadiusMeters: cfg.GeoFence.RadiusMeters,
		IPWhitelist:  cfg.GeoFence.IPWhitelist,
		PathPrefixes: cfg.GeoFence.PathWhitelist,
	})

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	configHandler := handlers.NewConfigHandler(configService)
	backupHandler := handlers.NewBackupHandler(userService, configService)

	// Admission pipeline, identity-independent stages first
	app.Use(middleware.MaintenanceGate(configService, cfg))
	app.Use(middleware.GeoFenceFilter(fence))

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	// Public auth routes
	auth := api.Group("/auth", middleware.NoCacheHeaders())
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/activate", middleware.AuthRateLimiter(), authHandler.Activate)
	auth.Get("/activate/link/:token", authHandler.ActivateByLink)
	auth.Post("/activate/resend", middleware.StrictRateLimiter(), authHandler.ResendActivation)
	auth.Post("/password-reset", middleware.StrictRateLimiter(), authHandler.RequestPasswordReset)
	auth.Post("/password-reset/confirm", middleware.StrictRateLimiter(), authHandler.ConfirmPasswordReset)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Authenticated user routes (minimum role: User)
	users := api.Group("/users",
		middleware.RequireAuth(cfg),
		middleware.RequireRole(domain.RoleUser),
	)
	users.Get("/me", userHandler.Me)
	users.Put("/me/password", userHandler.ChangePassword)

	// Admin routes (minimum role: Admin)
	admin := api.Group("/admin",
		middleware.NoCacheHeaders(),
		middleware.RequireAuth(cfg),
		middleware.RequireRole(domain.RoleAdmin),
	)
	admin.Get("/users", userHandler.List)
	admin.Put("/users/:id/status", userHandler.SetStatus)
	admin.Get("/configs", configHandler.List)
	admin.Put("/configs/:key", configHandler.Set)

	// Organizer-only routes (minimum role: Organizer)
	organizer := admin.Group("", middleware.RequireRole(domain.RoleOrganizer))
	organizer.Put("/users/:id/role", userHandler.SetRole)
	organizer.Get("/backup", backupHandler.Export)

	return janitor
}
