package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ninepros_server/api"
	"ninepros_server/config"
	"ninepros_server/internal/ai"
	"ninepros_server/internal/analytics"
	handlers "ninepros_server/internal/api"
	"ninepros_server/internal/deploy"
	"ninepros_server/internal/llm"
	"ninepros_server/internal/ratelimit"
	"ninepros_server/internal/redesign"
	"ninepros_server/internal/store"
)

func main() {
	// --- Load .env file ---
	// This must happen BEFORE viper loads config.
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		} else {
			log.Println("Info: .env file not found, relying on system environment variables.")
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".") // Load from config.yaml or env vars
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// --- Dependency Initialization ---
	defaultProvider, err := llm.ParseProviderID(cfg.DefaultProvider)
	if err != nil {
		log.Fatalf("Invalid DEFAULT_PROVIDER: %v", err)
	}
	registry := llm.NewRegistry(defaultProvider,
		llm.NewOllama(cfg.OllamaBaseURL),
		llm.NewLlama(cfg.LlamaAPIBaseURL, cfg.LlamaAPIKey),
	)
	llmClient := llm.NewClient(registry, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	generator := ai.NewGenerator(llmClient, redesign.NewFetcher(redesign.DefaultMaxChars), cfg.DefaultModel)

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Cannot open database: %v", err)
	}
	defer db.Close()
	projects, err := store.NewSQLiteStore(db)
	if err != nil {
		log.Fatalf("Cannot initialize project store: %v", err)
	}
	log.Printf("Project store ready at %s", cfg.DatabasePath)

	// Rate limiter: Redis when configured, otherwise in process memory.
	policy := ratelimit.Policy{RPM: cfg.RateLimitRPM, Burst: cfg.RateLimitBurst}
	ttl := time.Duration(cfg.RateLimitTTLSeconds) * time.Second
	var limiterStore ratelimit.Store
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := ratelimit.NewRedisClient(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatalf("Cannot connect to Redis: %v", err)
		}
		defer redisClient.Close()
		limiterStore = ratelimit.NewRedisStore(redisClient, policy, ttl)
		log.Printf("Rate limiting through Redis at %s", cfg.RedisAddr)
	} else {
		memStore := ratelimit.NewMemoryStore(policy, ttl)
		memStore.Start(time.Minute)
		defer memStore.Stop()
		limiterStore = memStore
	}
	limiter := ratelimit.New(limiterStore, 60)

	recorder := analytics.NewRecorder(cfg.AnalyticsCapacity)
	deployer := deploy.NewDeployer(cfg.DeployCLIPath, cfg.DeployBranch)

	apiHandler := handlers.NewAPIHandler(generator, projects, deployer, recorder)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in Gin Debug Mode")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api.RegisterRoutes(router, apiHandler, limiter.Middleware())

	server := &http.Server{
		Addr:        cfg.ServerAddress,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Generation streams for minutes, so there is no write timeout.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s\n", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s\n", err)
		}
		log.Println("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}

	log.Println("Application exiting.")
}
