package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/models"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresStorage struct {
	db         *sql.DB
	maxHistory int
	logger     *zap.Logger
}

func New(databaseURL string, maxHistory int, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if maxHistory <= 0 {
		maxHistory = interfaces.DefaultMaxHistory
	}

	return &PostgresStorage{
		db:         db,
		maxHistory: maxHistory,
		logger:     logger.With(zap.String("component", "postgres_storage")),
	}, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection (for migrations)
func (s *PostgresStorage) GetDB() *sql.DB {
	return s.db
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Append вставляет сообщение и удаляет лишние строки пользователя в одной транзакции.
// Advisory lock по user_id сериализует параллельные Append одного пользователя.
func (s *PostgresStorage) Append(ctx context.Context, userID string, msg models.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidRole, msg.Role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("failed to lock conversation: %w", err)
	}

	insert := `INSERT INTO conversation_messages (user_id, role, content) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, userID, string(msg.Role), msg.Content); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	trim := `
		DELETE FROM conversation_messages
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM conversation_messages
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		)`
	if _, err := tx.ExecContext(ctx, trim, userID, s.maxHistory); err != nil {
		return fmt.Errorf("failed to trim conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	s.logger.Debug("Message saved",
		zap.String("user_id", userID),
		zap.String("role", string(msg.Role)))

	return nil
}

func (s *PostgresStorage) GetAll(ctx context.Context, userID string) ([]models.Message, error) {
	query := `
		SELECT role, content
		FROM conversation_messages
		WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, models.Message{Role: models.Role(role), Content: content})
	}

	return messages, rows.Err()
}

func (s *PostgresStorage) Reset(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM conversation_messages WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	s.logger.Info("Conversation deleted", zap.String("user_id", userID))
	return nil
}

// Verify interface implementation
var _ interfaces.ContextStore = (*PostgresStorage)(nil)
