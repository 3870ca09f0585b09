package context

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/models"
	"ignis-bot/pkg/llm"

	"go.uber.org/zap"
)

// CompleteFunc получает всю сохраненную историю пользователя и возвращает ответ модели
type CompleteFunc func(ctx context.Context, messages []llm.Message) (string, error)

type Manager struct {
	store  interfaces.ContextStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store interfaces.ContextStore, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger.With(zap.String("component", "context_manager")),
		locks:  make(map[string]*userLock),
	}
}

// lock блокирует пользователя; запись удаляется, когда ее никто не держит
func (m *Manager) lock(userID string) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}
}

// Exchange сохраняет вопрос, отправляет обрезанную историю в complete и сохраняет ответ.
// Обмены одного пользователя выполняются строго по очереди.
func (m *Manager) Exchange(ctx context.Context, userID, question string, complete CompleteFunc) (string, error) {
	unlock := m.lock(userID)
	defer unlock()

	startTime := time.Now()

	if err := m.store.Append(ctx, userID, models.NewUserMessage(question)); err != nil {
		return "", fmt.Errorf("failed to save question: %w", err)
	}

	history, err := m.store.GetAll(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	reply, err := complete(ctx, llm.ConvertToLLMMessages(history))
	if err != nil {
		return "", err
	}

	if err := m.store.Append(ctx, userID, models.NewAssistantMessage(reply)); err != nil {
		return "", fmt.Errorf("failed to save reply: %w", err)
	}

	m.logger.Debug("Exchange completed",
		zap.String("user_id", userID),
		zap.Int("context_messages", len(history)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return reply, nil
}

// History возвращает сохраненный контекст пользователя
func (m *Manager) History(ctx context.Context, userID string) ([]models.Message, error) {
	history, err := m.store.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return history, nil
}

// Reset очищает контекст пользователя. Ждет завершения текущего обмена.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	unlock := m.lock(userID)
	defer unlock()

	if err := m.store.Reset(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	m.logger.Info("Conversation reset", zap.String("user_id", userID))
	return nil
}

// Ping проверяет доступность хранилища
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
