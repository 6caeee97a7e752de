package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/pricing"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Translation Agency Pricing API
// @version         1.0
// @description     Quote intake and pricing-resolution backend for a translation & interpretation agency.
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

	// Permission middleware needs DB access for role -> permission lookups
	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Pricing engine configuration
	pricingCfg := loadPricingConfig()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	langRepo := repository.NewLanguageRepository(db)
	clientRepo := repository.NewClientRepository(db)
	ruleRepo := repository.NewPricingRuleRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	roleService := service.NewRoleService(db)
	languageService := service.NewLanguageService(langRepo, auditRepo)
	clientService := service.NewClientService(clientRepo, auditRepo)
	ruleService := service.NewPricingRuleService(ruleRepo, langRepo, auditRepo)
	pricingService := service.NewPricingService(ruleRepo, auditRepo, wsHub, pricingCfg)
	quoteService := service.NewQuoteService(quoteRepo, clientRepo, auditRepo, pricingService, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(db)

	// Seed default roles and permissions
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Printf("WARNING: Failed to seed roles and permissions: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	languageHandler := handler.NewLanguageHandler(languageService)
	clientHandler := handler.NewClientHandler(clientService)
	ruleHandler := handler.NewPricingRuleHandler(ruleService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

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

	// WebSocket endpoint for admin dashboards (catalogue alerts, new quotes)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	roleHandler.RegisterRoutes(root)
	languageHandler.RegisterRoutes(root)
	clientHandler.RegisterRoutes(root)
	ruleHandler.RegisterRoutes(root)
	pricingHandler.RegisterRoutes(root)
	quoteHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)
	statisticsHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadPricingConfig reads billing increment, rush lead time and timezone
// overrides from the environment, falling back to the defaults.
func loadPricingConfig() pricing.Config {
	cfg := pricing.DefaultConfig()

	if raw := os.Getenv("PRICING_BILLING_INCREMENT_MIN"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			cfg.BillingIncrement = time.Duration(minutes) * time.Minute
		} else {
			log.Printf("WARNING: invalid PRICING_BILLING_INCREMENT_MIN %q, using default", raw)
		}
	}

	if raw := os.Getenv("PRICING_RUSH_LEAD_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			cfg.RushLeadTime = time.Duration(hours) * time.Hour
		} else {
			log.Printf("WARNING: invalid PRICING_RUSH_LEAD_HOURS %q, using default", raw)
		}
	}

	if raw := os.Getenv("PRICING_TIMEZONE"); raw != "" {
		if loc, err := time.LoadLocation(raw); err == nil {
			cfg.Location = loc
		} else {
			log.Printf("WARNING: invalid PRICING_TIMEZONE %q, using default", raw)
		}
	}

	return cfg
}
