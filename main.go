// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/config"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/cron"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database/repository/inventory"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/handlers"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/middleware"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/routes"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/services/assistant"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitSessionCache()

	// Inventory ledger and prompt store; Mongo only connects when configured.
	var ledger inventory.Ledger
	var prompts assistant.PromptStore
	if config.AppConfig.InventoryBackend == "mongo" {
		database.InitDB()
		ledger = inventory.NewMongoLedger()
		prompts = assistant.NewMongoPromptStore()
	} else {
		ledger = inventory.NewSeededMemoryLedger()
		prompts = &assistant.StaticPromptStore{}
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// Services.
	modelClient, err := assistant.NewGeminiClient(
		context.Background(),
		config.AppConfig.GeminiAPIKey,
		config.AppConfig.GeminiModel,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
	}
	defer modelClient.Close()

	registry := assistant.NewToolRegistry(ledger)
	sessions := assistant.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMinutes)*time.Minute,
	)

	assistantSvc := assistant.NewDefaultAssistantService(
		modelClient,
		registry,
		sessions,
		prompts,
		config.AppConfig.AssistantMaxToolRounds,
		time.Duration(config.AppConfig.AssistantTurnTimeoutSec)*time.Second,
	)
	assistantSvc.Tasks = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	assistantSvc.CleanupGrace = time.Duration(config.AppConfig.SessionCleanupGraceMin) * time.Minute

	cron.InitSessionCleanupWorker(sessions)
	utils.StartHealthMonitor([]*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

	// Handlers and routes.
	assistantHandler := handlers.NewAssistantHandler(assistantSvc)
	bookingHandler := handlers.NewBookingHandler(ledger)
	routes.RegisterAssistantRoutes(router, assistantHandler)
	routes.RegisterBookingRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
