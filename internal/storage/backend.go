package storage

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/flavr/backend/config"
)

// RedisKeyPrefix namespaces every state key written to Redis.
const RedisKeyPrefix = "flavr:"

// FromConfig returns the KV selected by cfg.StorageBackend. db and
// redisClient are only used by the matching backend.
func FromConfig(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (KV, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("storage: redis backend selected without a redis client")
		}
		return NewRedisKV(redisClient, RedisKeyPrefix), nil
	case config.StorageGorm:
		if db == nil {
			return nil, fmt.Errorf("storage: gorm backend selected without a database")
		}
		return NewGormKV(db), nil
	case config.StorageMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
