// Package bootstrap wires shared runtime dependencies for the cmd
// binaries.
package bootstrap

import (
	"fmt"

	"tidepool/internal/cache"
	"tidepool/internal/config"
	"tidepool/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client may
// be nil when the cache is disabled or unreachable; callers degrade
// gracefully.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if cfg.CacheEnabled {
		cache.InitRedis(cfg.RedisURL)
	}

	return db, cache.GetClient(), nil
}
