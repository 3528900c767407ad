package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puzzlebox/internal/config"
	"puzzlebox/internal/database"
	"puzzlebox/internal/handlers"
	"puzzlebox/internal/repository"
	"puzzlebox/internal/security"
	"puzzlebox/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.TokenSecret, cfg.TokenDuration)
	progressionService := service.NewProgressionService(levelRepo, progressRepo)
	catalogService := service.NewCatalogService(levelRepo)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg)
	levelHandler := handlers.NewLevelHandler(progressionService)
	adminHandler := handlers.NewAdminHandler(catalogService, userRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.OAuthCallback)

	// Player routes
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/levels", middleware.RequireAuth(levelHandler.List))
	mux.HandleFunc("GET /api/levels/{id}", middleware.RequireAuth(levelHandler.Get))
	mux.HandleFunc("PUT /api/levels/{id}/progress", middleware.RequireAuth(levelHandler.SaveProgress))
	mux.HandleFunc("DELETE /api/levels/{id}/progress", middleware.RequireAuth(levelHandler.ResetProgress))

	// Admin routes
	mux.HandleFunc("GET /api/admin/levels", middleware.RequireAdmin(adminHandler.ListLevels))
	mux.HandleFunc("POST /api/admin/levels", middleware.RequireAdmin(adminHandler.CreateLevel))
	mux.HandleFunc("GET /api/admin/levels/{id}", middleware.RequireAdmin(adminHandler.GetLevel))
	mux.HandleFunc("PUT /api/admin/levels/{id}", middleware.RequireAdmin(adminHandler.UpdateLevel))
	mux.HandleFunc("DELETE /api/admin/levels/{id}", middleware.RequireAdmin(adminHandler.RetireLevel))
	mux.HandleFunc("PUT /api/admin/users/{id}/tier", middleware.RequireAdmin(adminHandler.SetUserTier))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background reset token cleanup
	go cleanupExpiredTokens(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredTokens periodically removes expired password reset tokens
func cleanupExpiredTokens(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
			log.Printf("Failed to cleanup expired reset tokens: %v", err)
		}
	}
}
