package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geeksandijan/hrbot/core/logger"
)

const redisKeyPrefix = "hrbot:session:"

// RedisStore keeps sessions in Redis so they survive restarts. Expiry is
// delegated to key TTLs, which makes Sweep a no-op. A value that no longer
// decodes is deleted and reported as absent.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore wraps an existing client. A non-positive ttl selects DefaultTTL.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// DialRedis parses a redis:// URL and verifies the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func redisKey(id int64) string {
	return redisKeyPrefix + strconv.FormatInt(id, 10)
}

func (r *RedisStore) Get(ctx context.Context, id int64) (Session, bool, error) {
	raw, err := r.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// left behind by an older build, e.g. a renamed step
		logger.Warn(ctx, "session", "decode",
			slog.String("status", "skip"),
			slog.Int64("user_id", id),
			logger.Err(err),
		)
		if err := r.Delete(ctx, id); err != nil {
			return Session{}, false, err
		}
		return Session{}, false, nil
	}
	if s.Expired(r.now()) {
		return Session{}, false, nil
	}
	return s, true, nil
}

func (r *RedisStore) Put(ctx context.Context, id int64, s Session) error {
	s.ExpiresAt = r.now().Add(r.ttl)
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKey(id), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id int64) error {
	if err := r.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func (r *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }
