package memory

import (
	"context"
	"sync"

	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/models"
)

type conversation struct {
	mu       sync.Mutex
	messages []models.Message
}

// MemoryStorage хранит контекст в памяти процесса. Пропадает при рестарте.
type MemoryStorage struct {
	conversations map[string]*conversation // userID -> conversation
	maxHistory    int
	mu            sync.Mutex
}

func New(maxHistory int) *MemoryStorage {
	if maxHistory <= 0 {
		maxHistory = interfaces.DefaultMaxHistory
	}
	return &MemoryStorage{
		conversations: make(map[string]*conversation),
		maxHistory:    maxHistory,
	}
}

// get returns the user's conversation, creating it when create is set.
// Only the map lookup happens under the global lock; callers lock the entry.
func (m *MemoryStorage) get(userID string, create bool) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, exists := m.conversations[userID]
	if !exists && create {
		conv = &conversation{}
		m.conversations[userID] = conv
	}
	return conv
}

func (m *MemoryStorage) Append(ctx context.Context, userID string, msg models.Message) error {
	conv := m.get(userID, true)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.messages = append(conv.messages, msg)

	// Trim from the front
	if over := len(conv.messages) - m.maxHistory; over > 0 {
		trimmed := make([]models.Message, m.maxHistory)
		copy(trimmed, conv.messages[over:])
		conv.messages = trimmed
	}

	return nil
}

func (m *MemoryStorage) GetAll(ctx context.Context, userID string) ([]models.Message, error) {
	conv := m.get(userID, false)
	if conv == nil {
		return []models.Message{}, nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	out := make([]models.Message, len(conv.messages))
	copy(out, conv.messages)
	return out, nil
}

func (m *MemoryStorage) Reset(ctx context.Context, userID string) error {
	m.mu.Lock()
	conv, exists := m.conversations[userID]
	delete(m.conversations, userID)
	m.mu.Unlock()

	// Writers still holding the old entry finish on a detached slice
	if exists {
		conv.mu.Lock()
		conv.messages = nil
		conv.mu.Unlock()
	}

	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations = make(map[string]*conversation)
	return nil
}

// Users returns the number of users with a retained conversation
func (m *MemoryStorage) Users() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.conversations)
}

// Verify interface implementation
var _ interfaces.ContextStore = (*MemoryStorage)(nil)
