package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bookbasket/bookbasket-api/api/swagger"
	"github.com/bookbasket/bookbasket-api/internal/handler"
	"github.com/bookbasket/bookbasket-api/internal/middleware"
	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/internal/repository"
	"github.com/bookbasket/bookbasket-api/internal/service"
	"github.com/bookbasket/bookbasket-api/pkg/cache"
	"github.com/bookbasket/bookbasket-api/pkg/config"
	"github.com/bookbasket/bookbasket-api/pkg/database"
	"github.com/bookbasket/bookbasket-api/pkg/logger"
	"github.com/bookbasket/bookbasket-api/pkg/mail"
	corsmiddleware "github.com/bookbasket/bookbasket-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bookbasket/bookbasket-api/pkg/middleware/requestid"
	"github.com/bookbasket/bookbasket-api/pkg/storage"
)

// @title BookBasket API
// @version 1.0.0
// @description Book and e-book donation portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			redisClient = client
			defer client.Close() //nolint:errcheck
		}
	}

	store, err := storage.NewUploadStore(cfg.Uploads.BaseDir, cfg.Uploads.PublicPrefix)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload store", "error", err)
	}

	var sender mail.Sender
	if smtp := mail.NewSMTPSender(cfg.SMTP); smtp.Enabled() {
		sender = smtp
	} else {
		logr.Info("smtp not configured, notifications will be logged and dropped")
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	notifications := service.NewNotificationService(sender, logr, cfg.Notify)
	notifications.Start(context.Background())
	defer notifications.Stop()

	accountRepo := repository.NewAccountRepository(db)
	bookRepo := repository.NewBookRepository(db)
	ebookRepo := repository.NewEBookRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	accountService := service.NewAccountService(accountRepo, notifications, validate, logr)
	adminService := service.NewAdminService(accountRepo, notifications, logr)
	catalogService := service.NewCatalogService(bookRepo, ebookRepo, cacheRepo, store, metrics, validate, logr, service.CatalogConfig{
		CacheTTL:     cfg.Catalog.CacheTTL,
		MaxEBookSize: cfg.Uploads.MaxEBookSizeByte,
	})
	orderService := service.NewOrderService(orderRepo, bookRepo, ebookRepo, catalogService, metrics, validate, logr)
	reportService := service.NewReportService(orderRepo, logr)

	authHandler := handler.NewAuthHandler(accountService, authService)
	adminHandler := handler.NewAdminHandler(adminService, reportService)
	donorHandler := handler.NewDonorHandler(catalogService, reportService)
	studentHandler := handler.NewStudentHandler(catalogService, orderService, reportService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static(store.PublicPrefix(), store.BaseDir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")

	accounts := api.Group("/accounts")
	{
		accounts.POST("/register", authHandler.Register)
		accounts.POST("/login", authHandler.Login)
	}

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/students", adminHandler.ListStudents)
		admin.GET("/donors", adminHandler.ListDonors)
		admin.PUT("/students/:id/approve", adminHandler.ApproveStudent)
		admin.PUT("/students/:id/reject", adminHandler.RejectStudent)
		admin.GET("/orders", adminHandler.Orders)
		admin.GET("/orders/export", adminHandler.ExportOrders)
	}

	donor := api.Group("/donor", middleware.JWT(authService), middleware.RequireRoles(models.RoleDonor))
	{
		donor.POST("/books", donorHandler.AddBook)
		donor.GET("/books", donorHandler.Books)
		donor.PUT("/books/:id", donorHandler.UpdateBook)
		donor.POST("/ebooks", donorHandler.AddEBook)
		donor.GET("/ebooks", donorHandler.EBooks)
		donor.GET("/orders", donorHandler.Orders)
	}

	student := api.Group("/student", middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/books", studentHandler.Books)
		student.GET("/ebooks", studentHandler.EBooks)
		student.POST("/ebooks/:id/download", studentHandler.DownloadEBook)
		student.GET("/orders", studentHandler.Orders)
		student.POST("/orders", studentHandler.PlaceOrder)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
