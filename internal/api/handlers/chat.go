package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ignis-bot/internal/service/chat"
	"ignis-bot/internal/storage/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService chat.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type InvokeRequest struct {
	UserID string            `json:"user_id" binding:"required"`
	Args   map[string]string `json:"args,omitempty"`
}

type InvokeResponse struct {
	InvocationID string `json:"invocation_id"`
	Command      string `json:"command"`
	Content      string `json:"content"`
	Deferred     bool   `json:"deferred"`
}

type ContextResponse struct {
	UserID   string           `json:"user_id"`
	Messages []models.Message `json:"messages"`
	Total    int              `json:"total"`
}

type CommandsResponse struct {
	Help     string         `json:"help"`
	Commands []chat.Command `json:"commands"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// GET /commands - справка и описание команд
func (h *ChatHandler) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, CommandsResponse{
		Help:     chat.HelpText,
		Commands: chat.Commands(),
	})
}

// POST /commands/:name - тот же диспетчер, что и у Discord
func (h *ChatHandler) InvokeCommand(c *gin.Context) {
	var req InvokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	inv := models.NewCommandInvocation(c.Param("name"), strings.TrimSpace(req.UserID), req.Args)

	reply, err := h.chatService.Handle(c.Request.Context(), inv)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, ErrorResponse{
			Error:   chat.ErrorReply(err),
			Code:    code,
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, InvokeResponse{
		InvocationID: inv.ID,
		Command:      inv.Command,
		Content:      reply.Content,
		Deferred:     reply.Deferred,
	})
}

// GET /context/:user_id - сохраненный контекст пользователя
func (h *ChatHandler) GetContext(c *gin.Context) {
	userID := c.Param("user_id")

	messages, err := h.chatService.History(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get context", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to get context",
			Code:  "STORE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, ContextResponse{
		UserID:   userID,
		Messages: messages,
		Total:    len(messages),
	})
}

// DELETE /context/:user_id - сброс контекста, как /reset
func (h *ChatHandler) ResetContext(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.chatService.Reset(c.Request.Context(), userID); err != nil {
		h.logger.Error("Failed to reset context", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to reset context",
			Code:  "STORE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": chat.ResetReply,
		"user_id": userID,
	})
}

// GET /metrics - счетчики по командам
func (h *ChatHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"commands": h.chatService.Metrics(),
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrUnknownCommand):
		return http.StatusNotFound, "UNKNOWN_COMMAND"
	case errors.Is(err, chat.ErrEmptyUserID),
		errors.Is(err, chat.ErrEmptyArgument),
		errors.Is(err, chat.ErrArgumentTooLong),
		errors.Is(err, chat.ErrInvalidQuestionCount):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	default:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	}
}
