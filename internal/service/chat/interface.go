package chat

import (
	"context"

	"ignis-bot/internal/storage/models"
)

// ChatService то, чем пользуются Discord-адаптер и HTTP API
type ChatService interface {
	Handle(ctx context.Context, inv models.CommandInvocation) (*Reply, error)
	History(ctx context.Context, userID string) ([]models.Message, error)
	Reset(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Metrics() []CommandStats
}

// Verify interface implementation
var _ ChatService = (*Service)(nil)
