package app

import (
	"database/sql"
	"fmt"

	"github.com/denverparsonswork-debug/dockside-helper/internal/config"
	"github.com/denverparsonswork-debug/dockside-helper/internal/handlers"
	"github.com/denverparsonswork-debug/dockside-helper/internal/middleware"
	"github.com/denverparsonswork-debug/dockside-helper/internal/pdf"
	"github.com/denverparsonswork-debug/dockside-helper/internal/repositories"
	"github.com/denverparsonswork-debug/dockside-helper/internal/routes"
	"github.com/denverparsonswork-debug/dockside-helper/internal/services"
	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/denverparsonswork-debug/dockside-helper/docs"
)

func Run() {
	utils.InitLogger()
	cfg := config.LoadConfig()

	middleware.JWTKey = []byte(cfg.Security.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		utils.Logger.Fatalf("Ошибка подключения к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			utils.Logger.Warnf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Repos ===
	driverRepo := repositories.NewDriverRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	codeRepo := repositories.NewLoginCodeRepository(db)
	attemptRepo := repositories.NewLoginAttemptRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	// Telegram-алерты в ops-чат (может быть выключено в конфиге)
	var alertService *services.AlertService
	if cfg.Telegram.BotToken != "" {
		alertService = services.NewAlertService(
			cfg.Telegram.BotToken,
			cfg.Telegram.OpsChatID,
			cfg.Telegram.DryRun,
		)
	}

	driverService := services.NewDriverService(driverRepo, emailService, authService, alertService)
	customerService := services.NewCustomerService(customerRepo)
	twoFactorService := services.NewTwoFactorService(driverRepo, codeRepo, attemptRepo, emailService, alertService)

	// Фоновая чистка кодов и журнала попыток
	cleanupService := services.NewCleanupService(codeRepo, attemptRepo)
	if err := cleanupService.Start(); err != nil {
		utils.Logger.Fatalf("Ошибка запуска чистки: %v", err)
	}
	defer cleanupService.Stop()

	routeSheetGen := pdf.NewRouteSheetGenerator()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(driverService, authService, twoFactorService)
	driverHandler := handlers.NewDriverHandler(driverService)
	customerHandler := handlers.NewCustomerHandler(customerService, routeSheetGen)
	reportHandler := handlers.NewReportHandler(driverService, customerService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// Роуты (JWT/RBAC — внутри SetupRoutes)
	routes.SetupRoutes(
		router,
		authHandler,
		driverHandler,
		customerHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.Logger.Infof("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		utils.Logger.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
