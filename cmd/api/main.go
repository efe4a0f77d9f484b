package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "clothingstore/api/swagger" // swagger docs
	"clothingstore/config"
	"clothingstore/internal/database"
	"clothingstore/internal/handler"
	"clothingstore/internal/logger"
	"clothingstore/internal/middleware"
	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/internal/service"
	"clothingstore/internal/telemetry"
	"clothingstore/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// @title           Clothing Store Inventory API
// @version         1.0
// @description     Stock ledger, catalog and reporting API for a clothing store.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.Tracing)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	db, err := database.NewConnection(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.Inventory.EventBufferSize, log.Named("websocket"))
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db, cfg.Postgres.LockTimeoutMS)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	ledgerRepo := repository.NewInventoryTxRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	deriver := service.NewOrderDeriver(
		orderRepo,
		productRepo,
		service.NewOrderPolicy(cfg.Inventory.OrderDerivationMode, cfg.Inventory.SaleKeywords),
		cfg.Inventory.WalkInCustomerName,
	)
	ledgerService := service.NewStockLedgerService(
		txManager, variantRepo, productRepo, ledgerRepo, deriver, wsHub, log.Named("ledger"),
		service.LedgerOptions{BulkDefaultMinStock: cfg.Inventory.BulkDefaultMinStock},
	)
	transactionService := service.NewTransactionQueryService(ledgerRepo)
	alertService := service.NewAlertService(variantRepo)
	inventoryService := service.NewInventoryService(variantRepo, ledgerRepo)
	catalogService := service.NewCatalogService(txManager, categoryRepo, productRepo, variantRepo, auditRepo, cfg.Inventory.BulkDefaultMinStock)
	userService := service.NewUserService(txManager, userRepo, auditRepo, service.TokenConfig{
		Secret: []byte(cfg.JWT.Secret),
		TTL:    time.Duration(cfg.JWT.TTLHours) * time.Hour,
	}, log.Named("users"))
	auditService := service.NewAuditService(auditRepo)
	reportService := service.NewReportService(reportRepo, variantRepo)
	exportService := service.NewExportService(transactionService, reportService)

	auth := middleware.NewAuth([]byte(cfg.JWT.Secret), time.Duration(cfg.JWT.TTLHours)*time.Hour, cfg.Server.GinMode == gin.ReleaseMode)

	// Initialize Handlers
	inventoryHandler := handler.NewInventoryHandler(ledgerService, transactionService, alertService, inventoryService, auth)
	catalogHandler := handler.NewCatalogHandler(catalogService, auth)
	userHandler := handler.NewUserHandler(userService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)
	reportHandler := handler.NewReportHandler(reportService, exportService, auth)

	// Set up Gin Router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	router.Use(middleware.RequestLogger(log.Named("http")))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "websocket_clients": wsHub.ClientCount()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, auth, model.RoleAdmin, model.RoleManager, model.RoleStaff)
	})

	// API Routing
	userHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()
	if err := shutdownTracer(ctx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
