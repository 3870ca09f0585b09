// internal/api/routes/routes.go
package routes

import (
	"net/http"

	"ignis-bot/internal/api/handlers"
	"ignis-bot/internal/api/middleware"
	"ignis-bot/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	cfg *config.Config,
	logger *zap.Logger,
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
	modelsHandler *handlers.ModelsHandler,
) *gin.Engine {

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.ProviderInfoMiddleware(cfg.LLM.Provider, cfg.LLM.Model, logger))

	r.GET("/health", healthHandler.Check)

	api := r.Group("/api/v1")
	{
		commands := api.Group("/commands")
		{
			commands.GET("", chatHandler.ListCommands)
			commands.POST("/:name", chatHandler.InvokeCommand)
		}

		contexts := api.Group("/context")
		{
			contexts.GET("/:user_id", chatHandler.GetContext)
			contexts.DELETE("/:user_id", chatHandler.ResetContext)
		}

		api.GET("/metrics", chatHandler.GetMetrics)
		api.GET("/models", modelsHandler.GetAvailableModels)

		// Config endpoints (для отладки и мониторинга)
		configep := api.Group("/config")
		{
			// Получение информации о конфигурации (без секретов)
			configep.GET("/info", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"discord": gin.H{
						"development": cfg.Discord.Development,
						"guild_id":    cfg.Discord.GuildID,
						"status_text": cfg.Discord.StatusText,
					},
					"chat": gin.H{
						"max_history":         cfg.Chat.MaxHistory,
						"max_response_length": cfg.Chat.MaxResponseLength,
						"truncation_notice":   cfg.Chat.TruncationNotice,
					},
					"llm": gin.H{
						"provider": cfg.LLM.Provider,
						"model":    cfg.LLM.Model,
						"base_url": cfg.LLM.BaseURL,
						// НЕ включаем API ключ в ответ
					},
					"store": gin.H{
						"driver": cfg.Store.Driver,
					},
					"sources": config.GetConfigSource(cfg),
				})
			})
		}
	}

	return r
}
