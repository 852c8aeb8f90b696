package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/forumapp/config"
)

var (
	redisClient *redis.Client
	redisMu     sync.Mutex
	redisInit   bool
)

// GetRedis returns a singleton Redis client based on loaded config, or nil when
// Redis is not configured or unreachable at first use. Callers fall back to
// in-process state on nil.
func GetRedis() *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisInit {
		return redisClient
	}
	redisInit = true

	cfg := config.Get()
	if cfg.RedisHost == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis unavailable at %s, using in-memory fallbacks: %v", rc.Options().Addr, err)
		_ = rc.Close()
		return nil
	}
	redisClient = rc
	return redisClient
}

// SetRedis overrides the shared client; pass nil to disable Redis.
func SetRedis(rc *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = rc
	redisInit = true
}
