// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"regwizard/config"

	"github.com/go-redis/redis/v8"
)

var (
	// DraftCacheClient holds wizard drafts.
	DraftCacheClient *redis.Client
	// PreferenceCacheClient holds theme preferences.
	PreferenceCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// GetDraftCacheClient returns the Redis client for drafts.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		DraftCacheClient = newRedisClient(config.AppConfig.RedisDraftDB, "Drafts")
	}
	return DraftCacheClient
}

// GetPreferenceCacheClient returns the Redis client for preferences.
func GetPreferenceCacheClient() *redis.Client {
	if PreferenceCacheClient == nil {
		PreferenceCacheClient = newRedisClient(config.AppConfig.RedisPreferenceDB, "Preferences")
	}
	return PreferenceCacheClient
}

// RedisClients lists the clients opened so far, for health checks.
func RedisClients() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{DraftCacheClient, PreferenceCacheClient} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
