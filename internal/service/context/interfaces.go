package context

import (
	"context"

	"ignis-bot/internal/storage/models"
)

// ContextManager определяет интерфейс для управления контекстом
type ContextManager interface {
	Exchange(ctx context.Context, userID, question string, complete CompleteFunc) (string, error)
	History(ctx context.Context, userID string) ([]models.Message, error)
	Reset(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// Verify interface implementation
var _ ContextManager = (*Manager)(nil)
