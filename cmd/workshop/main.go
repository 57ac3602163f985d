package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gearbox/workshop/internal/config"
	"github.com/gearbox/workshop/internal/middleware"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/handler"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting workshop service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Customer{},
		&entity.Mechanic{},
		&entity.ServiceTicket{},
		&entity.TicketMechanic{},
		&entity.PartDescription{},
		&entity.Part{},
		&entity.TicketAttachment{},
	); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, services, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, svc *service.Services, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// Public: signup and login.
	r.POST("/customers", h.Customer.Create)
	r.POST("/customers/login", h.Auth.LoginCustomer)
	r.POST("/mechanics", h.Mechanic.Create)
	r.POST("/mechanics/login", h.Auth.LoginMechanic)
	r.POST("/auth/refresh", h.Auth.Refresh)

	// Everything else requires a valid bearer token. Role checks live in
	// the service layer's capability table.
	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret, svc.Auth.IsRevoked))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)

		customers := authorized.Group("/customers")
		{
			customers.GET("", h.Customer.List)
			customers.GET("/:id", h.Customer.Get)
			customers.PUT("/:id", h.Customer.Update)
			customers.DELETE("/:id", h.Customer.Delete)
		}

		mechanics := authorized.Group("/mechanics")
		{
			mechanics.GET("", h.Mechanic.List)
			mechanics.GET("/:id", h.Mechanic.Get)
			mechanics.PUT("/:id", h.Mechanic.Update)
			mechanics.PUT("/:id/role", h.Mechanic.ChangeRole)
			mechanics.DELETE("/:id", h.Mechanic.Delete)
		}

		tickets := authorized.Group("/tickets")
		{
			tickets.POST("", h.Ticket.Create)
			tickets.GET("", h.Ticket.List)
			tickets.GET("/:id", h.Ticket.Get)
			tickets.PUT("/:id/status", h.Ticket.SetStatus)
			tickets.PUT("/:id/assign-mechanic/:mechanicID", h.Ticket.AssignMechanic)
			tickets.PUT("/:id/remove-mechanic/:mechanicID", h.Ticket.RemoveMechanic)
			tickets.PUT("/:id/parts/:partID", h.Ticket.ConsumePart)
			tickets.GET("/:id/parts", h.Ticket.ListParts)

			tickets.POST("/:id/attachments", h.Attachment.Upload)
			tickets.GET("/:id/attachments", h.Attachment.List)
			tickets.GET("/:id/attachments/:attachmentID/download", h.Attachment.Download)
		}

		parts := authorized.Group("/parts")
		{
			parts.POST("", h.Part.CreateDescription)
			parts.GET("", h.Part.ListDescriptions)
			parts.POST("/units", h.Part.CreateUnit)
			parts.GET("/units/:id", h.Part.GetUnit)
			parts.PUT("/units/:id/description", h.Part.RemapUnit)
			parts.GET("/:id", h.Part.GetDescription)
			parts.PUT("/:id", h.Part.UpdateDescription)
			parts.DELETE("/:id", h.Part.DeleteDescription)
		}

		reports := authorized.Group("/reports")
		{
			reports.GET("/top-spenders", h.Report.TopSpenders)
			reports.GET("/top-mechanics", h.Report.TopMechanics)
			reports.GET("/export", h.Report.Export)
		}
	}
}
