package partcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/partman/syspart"
	"github.com/danthegoodman1/partman/utils"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

type (
	RedisCache struct {
		client *redis.Client
		ttl    time.Duration
	}
)

func NewRedisCache(ctx context.Context, ttl time.Duration) (*RedisCache, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("connecting to redis part cache")
	rc := &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:        utils.REDIS_ADDR,
			Password:    utils.REDIS_PASSWORD,
			DB:          0,
			DialTimeout: time.Second * 3,
		}),
		ttl: ttl,
	}

	// Ping test first to ensure valid connection
	if utils.GetEnvOrDefault("REDIS_PING_TEST", "") == "1" {
		logger.Debug().Msg("running redis ping test")
		s := time.Now()
		_, err := rc.client.Ping(ctx).Result()
		if err != nil {
			rc.client.Close()
			return nil, fmt.Errorf("error pinging redis: %w", err)
		}
		logger.Debug().Msgf("redis ping test successful in %s", time.Since(s))
	}

	return rc, nil
}

func (rc *RedisCache) GetParts(ctx context.Context, key string) ([]syspart.Part, bool, error) {
	logger := zerolog.Ctx(ctx)
	raw, err := rc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error in redis GET: %w", err)
	}

	var parts []syspart.Part
	err = json.Unmarshal([]byte(raw), &parts)
	if err != nil {
		return nil, false, fmt.Errorf("error in json.Unmarshal: %w", err)
	}

	logger.Debug().Msgf("part cache hit for %s (%d parts)", key, len(parts))
	return parts, true, nil
}

func (rc *RedisCache) SetParts(ctx context.Context, key string, parts []syspart.Part) error {
	jsonBytes, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("error in json.Marshal: %w", err)
	}

	_, err = rc.client.Set(ctx, key, string(jsonBytes), rc.ttl).Result()
	if err != nil {
		return fmt.Errorf("error in redis SET: %w", err)
	}

	return nil
}

func (rc *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := rc.client.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("error in redis DEL: %w", err)
	}
	return nil
}

func (rc *RedisCache) Shutdown(_ context.Context) error {
	err := rc.client.Close()
	if err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
