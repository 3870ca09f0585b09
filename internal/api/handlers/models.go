package handlers

import (
	"net/http"

	"ignis-bot/pkg/llm"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ModelsHandler struct {
	logger   *zap.Logger
	registry *llm.Registry
}

func NewModelsHandler(registry *llm.Registry, logger *zap.Logger) *ModelsHandler {
	return &ModelsHandler{
		logger:   logger,
		registry: registry,
	}
}

type ModelsResponse struct {
	CurrentProvider    string             `json:"current_provider"`
	CurrentModel       string             `json:"current_model"`
	AvailableProviders []llm.ProviderInfo `json:"available_providers"`
}

// GET /models - доступные провайдеры и модели
func (h *ModelsHandler) GetAvailableModels(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsResponse{
		CurrentProvider:    c.GetString("current_provider"),
		CurrentModel:       c.GetString("current_model"),
		AvailableProviders: h.registry.GetAvailableProviders(),
	})
}
