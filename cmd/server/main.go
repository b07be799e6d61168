package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/witthaya/prakan/internal/ai"
	"github.com/witthaya/prakan/internal/config"
	"github.com/witthaya/prakan/internal/database"
	"github.com/witthaya/prakan/internal/handlers"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/middleware"
	"github.com/witthaya/prakan/internal/repository"
	"github.com/witthaya/prakan/internal/services"
	"github.com/witthaya/prakan/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Prakan API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure database schema", err, nil)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Document store for uploaded policy files
	docStore, err := storage.NewLocalStore(cfg.Storage.DocumentDir)
	if err != nil {
		log.Fatal("Failed to initialize document store", err, map[string]interface{}{
			"dir": cfg.Storage.DocumentDir,
		})
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Identity
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Identity())

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and service layers
	policyRepo := repository.NewPolicyRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	analyzer := ai.NewClient(cfg.AI, log)

	policyService := services.NewPolicyService(policyRepo, log)
	profileService := services.NewProfileService(profileRepo, log)
	portfolioService := services.NewPortfolioService(policyRepo, log, cfg.Portfolio.RenewalPreview)
	taxService := services.NewTaxService(policyRepo, profileRepo, log)
	analysisService := services.NewAnalysisService(policyRepo, profileRepo, analyzer, log)

	// Initialize handlers
	policyHandler := handlers.NewPolicyHandler(policyService)
	profileHandler := handlers.NewProfileHandler(profileService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, taxService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	documentHandler := handlers.NewDocumentHandler(policyService, docStore)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		policies := v1.Group("/policies")
		{
			policies.GET("", policyHandler.List)
			policies.POST("", policyHandler.Create)
			policies.PUT("/:id", policyHandler.Update)
			policies.DELETE("/:id", policyHandler.Delete)

			policies.POST("/:id/documents", documentHandler.Upload)
			policies.GET("/:id/documents", documentHandler.List)
			policies.GET("/:id/documents/:docID/content", documentHandler.Download)
			policies.DELETE("/:id/documents/:docID", documentHandler.Delete)
		}

		v1.GET("/profile", profileHandler.Get)
		v1.PUT("/profile", profileHandler.Put)

		portfolio := v1.Group("/portfolio")
		{
			portfolio.GET("/summary", portfolioHandler.Summary)
			portfolio.GET("/tax", portfolioHandler.Tax)
		}

		analysis := v1.Group("/analysis")
		{
			analysis.POST("/gap", analysisHandler.Gap)
			analysis.POST("/tax", analysisHandler.Tax)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
