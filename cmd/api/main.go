package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/adapter"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/book"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/purchase"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/recommendation"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/repository"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/user"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/worker"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/database"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "amazin-bookstore"

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting bookstore service")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	appLogger.Info("Database connection established")

	// Order matters: purchase_items references checkouts and books
	if err := db.AutoMigrate(&user.User{}, &book.Book{}, &purchase.Checkout{}, &purchase.PurchaseItem{}); err != nil {
		appLogger.Fatal("Failed to migrate database: " + err.Error())
	}

	appLogger.Info("Database migration completed")

	// Initialize GORM-based repositories
	userRepo := repository.NewGORMUserRepository(db, appLogger)
	bookRepo := repository.NewGORMBookRepository(db, appLogger)
	purchaseRepo := repository.NewGORMPurchaseRepository(db, appLogger)

	// Read-only stores backing the recommendation engine
	recUserStore := repository.NewGORMRecommendationUserStore(db, appLogger)
	recPurchaseStore := repository.NewGORMRecommendationPurchaseStore(db, appLogger)
	recCatalogStore := repository.NewGORMRecommendationCatalogStore(db, appLogger)

	userService, err := user.NewService(&cfg.JWT, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize user service: " + err.Error())
	}

	bookService, err := book.NewService(&cfg.Catalog, bookRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize book service: " + err.Error())
	}

	purchaseCatalog := adapter.NewBookServiceToPurchaseCatalog(bookService)
	purchaseService := purchase.NewService(purchaseRepo, purchaseCatalog, appLogger)
	recommendationService := recommendation.NewService(recUserStore, recPurchaseStore, recCatalogStore, appLogger)

	// Initialize HTTP handlers
	userHandler := user.NewHandler(userService)
	bookHandler := book.NewHandler(bookService)
	purchaseHandler := purchase.NewHandler(purchaseService)
	recommendationHandler := recommendation.NewHandler(recommendationService)

	lowStockWorker, err := worker.NewJobWorker(
		"low-stock-sweep",
		cfg.Worker.LowStockInterval,
		bookService.ReportLowInventory,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize low stock worker: " + err.Error())
	}

	if err := lowStockWorker.Start(); err != nil {
		appLogger.Error("Failed to start low stock worker: " + err.Error())
	}

	router := gin.New()

	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unreachable"
		}

		c.JSON(status, gin.H{
			"status":           http.StatusText(status),
			"timestamp":        time.Now(),
			"service":          serviceName,
			"low_stock_worker": lowStockWorker.IsRunning(),
			"database":         dbStatus,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := userHandler.AuthMiddleware()
	adminMiddleware := userHandler.AdminOnly()

	v1 := router.Group("/api/v1")
	{
		// Each feature manages its own routes
		userHandler.RegisterRoutes(v1, authMiddleware)
		bookHandler.RegisterRoutes(v1, authMiddleware, adminMiddleware)
		purchaseHandler.RegisterRoutes(v1, authMiddleware)
		recommendationHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Parse server configuration with defaults
	serverPort := cfg.Server.Port
	if serverPort == "" {
		serverPort = "8080"
	}

	serverReadTimeout := 30 * time.Second
	if cfg.Server.ReadTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.ReadTimeout); err == nil {
			serverReadTimeout = duration
		}
	}

	serverWriteTimeout := 30 * time.Second
	if cfg.Server.WriteTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.WriteTimeout); err == nil {
			serverWriteTimeout = duration
		}
	}

	serverEnvironment := cfg.Server.Environment
	if serverEnvironment == "" {
		serverEnvironment = "development"
	}

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server: " + err.Error())
		}
	}()

	appLogger.Info("Server started successfully on port " + serverPort + " (" + serverEnvironment + " environment)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	if err := lowStockWorker.Stop(); err != nil {
		appLogger.Error("Error stopping low stock worker: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown: " + err.Error())
	}

	appLogger.Info("Server shutdown complete")
}
