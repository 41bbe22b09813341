package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/hypnotizedent/printshop-os-sub002/api/swagger" // swagger docs
	"github.com/hypnotizedent/printshop-os-sub002/internal/database"
	"github.com/hypnotizedent/printshop-os-sub002/internal/handler"
	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/quotecache"
	"github.com/hypnotizedent/printshop-os-sub002/internal/repository"
	"github.com/hypnotizedent/printshop-os-sub002/internal/ruleset"
	"github.com/hypnotizedent/printshop-os-sub002/internal/service"
	"github.com/hypnotizedent/printshop-os-sub002/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Pricing Rule Engine API
// @version         1.0
// @description     Quote calculation service with versioned pricing rules, margin enforcement and append-only quote history.
// @host            localhost:8080
// @BasePath        /
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

	// Rate tables
	configPath := os.Getenv("PRICING_CONFIG")
	if configPath == "" {
		configPath = "configs/pricing.json"
	}
	rates, err := pricing.LoadRateConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load pricing config %s: %v", configPath, err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	ruleRepo := repository.NewRuleRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	rulesetManager := ruleset.NewManager(ruleRepo, versionRepo)
	if err := rulesetManager.Reload(context.Background()); err != nil {
		log.Fatalf("Initial rule-set load failed: %v", err)
	}
	log.Printf("Loaded rule set at version %d", rulesetManager.Version())

	cacheTTL := quotecache.DefaultTTL
	if v := os.Getenv("QUOTE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid QUOTE_CACHE_TTL %q: %v", v, err)
		}
		cacheTTL = d
	}
	cache := quotecache.New(cacheTTL, time.Now)

	quoteCfg := service.QuoteServiceConfig{
		StrictAudit: os.Getenv("STRICT_AUDIT") == "true",
	}
	if v := os.Getenv("HISTORY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid HISTORY_TIMEOUT %q: %v", v, err)
		}
		quoteCfg.HistoryTimeout = d
	}
	if v := os.Getenv("HISTORY_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			log.Fatalf("Invalid HISTORY_RETRIES %q: %v", v, err)
		}
		quoteCfg.HistoryRetries = n
	}

	quoteService := service.NewQuoteService(rulesetManager, cache, historyRepo, rates, wsHub, quoteCfg)
	ruleService := service.NewRuleService(ruleRepo, versionRepo, auditRepo, txManager, rulesetManager, wsHub)
	historyService := service.NewHistoryService(historyRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	quoteHandler := handler.NewQuoteHandler(quoteService)
	ruleHandler := handler.NewRuleHandler(ruleService)
	historyHandler := handler.NewHistoryHandler(historyService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Actor-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK", "rule_set_version": rulesetManager.Version()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	quoteHandler.RegisterRoutes(router.Group(""))
	ruleHandler.RegisterRoutes(router.Group(""))
	historyHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
