package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/LionGab/lyla-erl/internal/api/router"
	appconfig "github.com/LionGab/lyla-erl/internal/config"
	"github.com/LionGab/lyla-erl/internal/conversation"
	"github.com/LionGab/lyla-erl/internal/diagnostic"
	"github.com/LionGab/lyla-erl/internal/financial"
	"github.com/LionGab/lyla-erl/internal/funnel"
	"github.com/LionGab/lyla-erl/internal/http/handlers"
	"github.com/LionGab/lyla-erl/internal/memory"
	"github.com/LionGab/lyla-erl/internal/observability/metrics"
	"github.com/LionGab/lyla-erl/internal/onboarding"
	"github.com/LionGab/lyla-erl/internal/recommend"
	"github.com/LionGab/lyla-erl/internal/thread"
	"github.com/LionGab/lyla-erl/internal/webchat"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lyla-erl API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Redis backs the thread store and the per-user snapshots.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	kv := thread.NewRedisKV(redisClient)

	// Postgres is optional; without it conversations run local-only.
	var remoteStore *memory.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database unreachable, running local-only", "error", err)
		} else {
			remoteStore = memory.NewStore(db)
			logger.Info("remote memory store enabled")
		}
	}

	llm, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.GeminiImageModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	llmMetrics := metrics.NewLLMMetrics(nil)
	persistenceMetrics := metrics.NewPersistenceMetrics(nil)

	threadStore := thread.NewStore(kv, logger)
	facade := memory.NewFacade(threadStore, remoteStore, logger, persistenceMetrics)
	onboardingStore := onboarding.NewStore(kv, logger)

	chatService := conversation.NewService(llm, facade, onboardingStore, logger, llmMetrics, conversation.ServiceOptions{
		MaxAttempts: cfg.LLMMaxAttempts,
		BaseDelay:   cfg.LLMRetryBaseDelay,
		Timeout:     cfg.LLMTimeout,
	})

	routerCfg := &router.Config{
		Logger:             logger,
		Diagnostic:         handlers.NewDiagnosticHandler(diagnostic.NewElaborator(llm, logger, llmMetrics), diagnostic.NewStore(kv, logger), logger),
		Simulation:         handlers.NewSimulationHandler(financial.NewStore(kv, logger), logger),
		Threads:            handlers.NewThreadsHandler(threadStore, logger),
		Chat:               handlers.NewChatHandler(chatService, logger),
		Onboarding:         handlers.NewOnboardingHandler(onboardingStore, logger),
		Recommend:          handlers.NewRecommendHandler(recommend.NewService(llm, kv, logger, llmMetrics), logger),
		Funnel:             handlers.NewFunnelHandler(funnel.NewService(llm, kv, logger, llmMetrics), logger),
		WebChat:            webchat.NewHandler(chatService, logger, cfg.CORSAllowedOrigins),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthJWTSecret:      cfg.AuthJWTSecret,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM turns can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
