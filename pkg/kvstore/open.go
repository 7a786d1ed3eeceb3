package kvstore

import (
	"fmt"

	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/db"
	"github.com/angelmondragon/obohub-backend/pkg/redis"
)

// Open picks the backend named by cfg. The matching client must already be
// connected; the memory backend needs neither.
func Open(cfg config.StoreConfig, dbClient *db.Client, redisClient *redis.Client) (Store, error) {
	switch {
	case cfg.UsesSQL():
		if dbClient == nil {
			return nil, fmt.Errorf("sql store requires a database client")
		}
		return NewSQL(dbClient), nil
	case cfg.UsesRedis():
		if redisClient == nil {
			return nil, fmt.Errorf("redis store requires a redis client")
		}
		return NewRedis(redisClient), nil
	default:
		return NewMemory(), nil
	}
}
