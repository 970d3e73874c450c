package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Redis serialises passes across replicas sharing one Redis.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  func() string
}

// NewRedis connects and pings Redis.
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, cfg.LockKey, cfg.LockTTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "scraper:pass-lock"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Redis{client: client, key: key, ttl: ttl, token: uuid.NewString}
}

// WithToken overrides the token generator.
func (r *Redis) WithToken(fn func() string) *Redis {
	r.token = fn
	return r
}

func (r *Redis) TryAcquire(ctx context.Context) (func(), bool, error) {
	token := r.token()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire pass lock %s: %w", r.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		// The pass context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.client.Eval(releaseCtx, releaseScript, []string{r.key}, token).Err(); err != nil {
			slog.Warn("Failed to release pass lock", "key", r.key, "error", err)
		}
	}, true, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
