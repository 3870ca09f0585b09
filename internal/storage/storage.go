// Package storage собирает хранилище контекста по конфигурации.
package storage

import (
	"context"
	"fmt"
	"strings"

	"ignis-bot/internal/config"
	"ignis-bot/internal/storage/interfaces"
	"ignis-bot/internal/storage/memory"
	"ignis-bot/internal/storage/postgres"
	"ignis-bot/internal/storage/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewContextStore создает хранилище выбранного драйвера и проверяет соединение.
// Для postgres при auto_migrate применяются встроенные миграции.
func NewContextStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.ContextStore, error) {
	maxHistory := cfg.Chat.MaxHistory

	switch strings.ToLower(cfg.Store.Driver) {
	case "", "memory":
		logger.Info("Using in-memory context store", zap.Int("max_history", maxHistory))
		return memory.New(maxHistory), nil

	case "redis":
		rc := cfg.Store.Redis
		client := goredis.NewClient(&goredis.Options{
			Addr:     rc.Addr(),
			Password: rc.Password,
			DB:       rc.DB,
		})
		store := redis.New(client, redis.Options{
			KeyPrefix:  rc.KeyPrefix,
			MaxHistory: maxHistory,
			TTL:        rc.TTL,
		}, logger)

		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis store at %s: %w", rc.Addr(), err)
		}

		logger.Info("Using redis context store",
			zap.String("addr", rc.Addr()),
			zap.Int("db", rc.DB),
			zap.Int("max_history", maxHistory))
		return store, nil

	case "postgres":
		store, err := postgres.New(cfg.Store.Postgres.URL, maxHistory, logger)
		if err != nil {
			return nil, err
		}

		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("postgres store: %w", err)
		}

		if cfg.Store.Postgres.AutoMigrate {
			if err := postgres.NewMigrator(store.GetDB(), logger).Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("postgres migrations: %w", err)
			}
		}

		logger.Info("Using postgres context store", zap.Int("max_history", maxHistory))
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
