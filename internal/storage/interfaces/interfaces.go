package interfaces

import (
	"context"

	"ignis-bot/internal/storage/models"
)

// DefaultMaxHistory максимум сообщений, хранимых для одного пользователя
const DefaultMaxHistory = 10

// ContextStore хранит короткий контекст разговора каждого пользователя.
// После каждого Append у пользователя остаётся не больше MaxHistory последних сообщений.
type ContextStore interface {
	// Append adds msg to the end of the user's conversation, creating it if needed,
	// then drops the oldest messages until at most MaxHistory remain.
	Append(ctx context.Context, userID string, msg models.Message) error

	// GetAll returns the retained conversation oldest-first. Empty if none.
	GetAll(ctx context.Context, userID string) ([]models.Message, error)

	// Reset discards the whole conversation for the user.
	Reset(ctx context.Context, userID string) error

	// Ping checks connectivity to the backing store
	Ping(ctx context.Context) error

	Close() error
}
