package redis

import (
	"context"
	"fmt"
	"time"

	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/models"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "ignis:history:"

// RedisStorage хранит контекст каждого пользователя в списке Redis.
// Каждый элемент списка — одно закодированное сообщение.
type RedisStorage struct {
	client     *goredis.Client
	keyPrefix  string
	maxHistory int
	ttl        time.Duration
	logger     *zap.Logger
}

type Options struct {
	KeyPrefix  string
	MaxHistory int
	// TTL is refreshed on every append; zero keeps keys forever.
	TTL time.Duration
}

func New(client *goredis.Client, opts Options, logger *zap.Logger) *RedisStorage {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = interfaces.DefaultMaxHistory
	}

	return &RedisStorage{
		client:     client,
		keyPrefix:  opts.KeyPrefix,
		maxHistory: opts.MaxHistory,
		ttl:        opts.TTL,
		logger:     logger.With(zap.String("component", "redis_storage")),
	}
}

// Append pushes the message and trims the list inside one MULTI/EXEC,
// so concurrent appends for the same user never observe an untrimmed list.
func (s *RedisStorage) Append(ctx context.Context, userID string, msg models.Message) error {
	raw, err := models.EncodeMessage(msg)
	if err != nil {
		return err
	}

	key := s.key(userID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, key, raw)
		pipe.LTrim(ctx, key, int64(-s.maxHistory), -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	s.logger.Debug("Message appended",
		zap.String("user_id", userID),
		zap.String("role", string(msg.Role)))

	return nil
}

func (s *RedisStorage) GetAll(ctx context.Context, userID string) ([]models.Message, error) {
	raws, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	messages := make([]models.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := models.DecodeMessage(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt entry for user %s: %w", userID, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (s *RedisStorage) Reset(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	s.logger.Debug("Conversation reset", zap.String("user_id", userID))
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func (s *RedisStorage) key(userID string) string {
	return s.keyPrefix + userID
}

// Verify interface implementation
var _ interfaces.ContextStore = (*RedisStorage)(nil)
