package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

// Compare-and-delete so a holder whose TTL expired cannot release a newer holder's lock.
// KEYS[1] = lock key, ARGV[1] = owner token
const releaseScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

const (
	defaultLockTTL  = 3 * time.Minute
	defaultLockPoll = 200 * time.Millisecond
	lockKeyPrefix   = "lock:"
)

// RedisLocker holds locks as SET NX keys with a TTL, shared by every API replica.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
}

// NewRedisClient parses url (redis:// or rediss://) and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}
	return client, nil
}

// NewRedisLocker wraps client. ttl bounds how long a crashed holder blocks others.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, poll: defaultLockPoll}
}

// Acquire polls SET NX until it wins or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.client == nil {
		return nil, errors.New("redis lock: client not initialized")
	}
	fullKey := lockKeyPrefix + key
	token := util.RandomToken(12)

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := l.client.Eval(releaseCtx, releaseScript, []string{fullKey}, token).Err(); err != nil {
			telemetry.Warn("lock.release_failed", map[string]any{"key": key, "err": err})
		}
	}, nil
}
