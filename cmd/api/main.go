package main

import (
	"context"
	"log"
	"os"

	"otkup-backend/internal/database"
	"otkup-backend/internal/handler"
	"otkup-backend/internal/middleware"
	"otkup-backend/internal/repository"
	"otkup-backend/internal/service"
	"otkup-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Otkup Inventory API
// @version         1.0
// @description     Backend for the device buyback shop: inventory, templates, statistics and storefront stock sync.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	authService := service.NewAuthService(userRepo)
	syncService := service.NewSyncService(deviceRepo, settingsRepo)
	deviceService := service.NewDeviceService(deviceRepo, sequenceRepo, txManager, syncService, wsHub)
	templateService := service.NewTemplateService(deviceRepo, sequenceRepo, txManager, wsHub)
	transferService := service.NewTransferService(deviceRepo, sequenceRepo, txManager, wsHub)
	statisticsService := service.NewStatisticsService(deviceRepo)
	employeeService := service.NewEmployeeService(employeeRepo, deviceRepo, wsHub)
	settingsService := service.NewSettingsService(settingsRepo)

	// Seed the single authorized account
	adminEmail := middleware.AuthorizedEmail()
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme"
		log.Println("WARNING: ADMIN_PASSWORD not set, using default credentials")
	}
	if err := authService.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	deviceHandler := handler.NewDeviceHandler(deviceService, transferService)
	templateHandler := handler.NewTemplateHandler(templateService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	syncHandler := handler.NewSyncHandler(syncService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), middleware.AuthorizedEmail())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	deviceHandler.RegisterRoutes(router.Group(""))
	templateHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	employeeHandler.RegisterRoutes(router.Group(""))
	settingsHandler.RegisterRoutes(router.Group(""))
	syncHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
