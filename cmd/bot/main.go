package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ignis-bot/internal/api/handlers"
	"ignis-bot/internal/api/routes"
	"ignis-bot/internal/bot/discord"
	"ignis-bot/internal/config"
	"ignis-bot/internal/service/chat"
	contextmgr "ignis-bot/internal/service/context"
	"ignis-bot/internal/storage"
	"ignis-bot/pkg/llm"
	"ignis-bot/pkg/llm/providers"

	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Настройка логгера
	logger, err := setupLogger(cfg.Logging)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting Ignis",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("store", cfg.Store.Driver),
		zap.String("database_url", maskDatabaseURL(cfg.Store.Postgres.URL)),
		zap.Int("max_history", cfg.Chat.MaxHistory),
		zap.Bool("development", cfg.Discord.Development),
	)

	// Хранилище контекста; недоступный redis/postgres - фатально
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.NewContextStore(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to initialize context store", zap.Error(err))
	}
	defer store.Close()

	registry := llm.NewRegistry(logger)
	llmClient, err := initLLMClient(cfg, registry)
	if err != nil {
		logger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}
	defer llmClient.Close()

	logger.Info("LLM client initialized",
		zap.String("provider", llmClient.GetProviderName()),
		zap.Strings("models", llmClient.GetSupportedModels()),
	)

	contextManager := contextmgr.NewManager(store, logger)
	chatService := chat.NewService(contextManager, llmClient, &cfg.Chat, logger)

	bot, err := discord.New(cfg.Discord, chatService, logger)
	if err != nil {
		logger.Fatal("Failed to create discord bot", zap.Error(err))
	}
	if err := bot.Start(); err != nil {
		logger.Fatal("Failed to start discord bot", zap.Error(err))
	}

	var server *http.Server
	if cfg.Server.Enabled {
		server = startServer(cfg, logger, chatService, registry)
	}

	logConfigInfo(cfg, logger)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	if err := bot.Stop(ctx); err != nil {
		logger.Error("Failed to close discord session", zap.Error(err))
	}

	logger.Info("Ignis stopped gracefully")
}

func initLLMClient(cfg *config.Config, registry *llm.Registry) (*llm.Client, error) {
	providerConfig := providers.Config{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}
	retry := llm.NewRetryConfig(cfg.LLM.Retry.MaxRetries, cfg.LLM.Retry.InitialDelay, cfg.LLM.Retry.MaxDelay)

	client, err := registry.NewClient(providerConfig, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.LLM.Provider, err)
	}
	return client, nil
}

func startServer(cfg *config.Config, logger *zap.Logger, chatService *chat.Service, registry *llm.Registry) *http.Server {
	chatHandler := handlers.NewChatHandler(chatService, logger)
	healthHandler := handlers.NewHealthHandler(chatService, logger)
	modelsHandler := handlers.NewModelsHandler(registry, logger)

	router := routes.SetupRoutes(cfg, logger, chatHandler, healthHandler, modelsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Ops server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return server
}

func maskDatabaseURL(dbURL string) string {
	// Маскируем пароль в URL для логирования
	if dbURL == "" {
		return ""
	}

	parts := strings.SplitN(dbURL, "://", 2)
	if len(parts) != 2 {
		return dbURL
	}

	afterProtocol := parts[1]
	atIndex := strings.Index(afterProtocol, "@")
	if atIndex == -1 {
		return dbURL
	}

	colonIndex := strings.Index(afterProtocol, ":")
	if colonIndex == -1 || colonIndex > atIndex {
		return dbURL
	}

	username := afterProtocol[:colonIndex]
	afterAt := afterProtocol[atIndex:]

	return fmt.Sprintf("%s://%s:***%s", parts[0], username, afterAt)
}

func logConfigInfo(cfg *config.Config, logger *zap.Logger) {
	configSources := config.GetConfigSource(cfg)

	logger.Info("Configuration loaded successfully",
		zap.String("config_file", configSources["config_file"]),
		zap.String("discord_token", configSources["discord_token"]),
		zap.String("llm_api_key", configSources["llm_api_key"]),
		zap.String("provider", configSources["provider"]),
		zap.String("store", configSources["store"]),
		zap.String("commands", configSources["commands"]),
	)

	logger.Info("Environment variables guide",
		zap.Strings("discord_env_vars", config.GetDiscordEnvVars()),
		zap.Strings("llm_env_vars", config.GetLLMEnvVars()),
		zap.Strings("store_env_vars", config.GetStoreEnvVars()),
	)
}

func setupLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	// Настройка уровня логирования
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapCfg.Build()
}
