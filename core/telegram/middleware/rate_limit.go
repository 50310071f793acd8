package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/geeksandijan/hrbot/core/config"
	"github.com/geeksandijan/hrbot/core/logger"
	tghelpers "github.com/geeksandijan/hrbot/core/telegram/helpers"
)

// Limiter decides whether a user may be served now.
type Limiter interface {
	Allow(ctx context.Context, userID int64) bool
}

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Limiter overrides the in-process limiter built from Interval.
	Limiter Limiter
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between messages from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewMemoryLimiter(opts.Interval)
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			if limiter.Allow(ctx, user.ID) {
				return next(c)
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "skip"),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// MemoryLimiter keeps the last accepted time per user in process memory.
type MemoryLimiter struct {
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSeen map[int64]time.Time
}

// NewMemoryLimiter allows one update per user per interval. A non-positive
// interval allows everything.
func NewMemoryLimiter(interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{interval: interval, now: time.Now, lastSeen: make(map[int64]time.Time)}
}

func (l *MemoryLimiter) Allow(_ context.Context, userID int64) bool {
	if l.interval <= 0 {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastSeen[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[userID] = now
	if len(l.lastSeen) > 4096 {
		for id, ts := range l.lastSeen {
			if now.Sub(ts) >= l.interval {
				delete(l.lastSeen, id)
			}
		}
	}
	return true
}

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter counts updates per user in a fixed redis window, so the
// limit holds across bot replicas sharing the redis.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
}

// NewRedisLimiter allows limit updates per user per window.
func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(rateLimitScript),
	}
}

// Allow fails open: a redis error lets the update through.
func (l *RedisLimiter) Allow(ctx context.Context, userID int64) bool {
	if l == nil || l.client == nil || l.limit <= 0 || l.window <= 0 {
		return true
	}
	key := strconv.FormatInt(userID, 10)
	if l.prefix != "" {
		key = l.prefix + ":" + key
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, l.limit).Int64()
	if err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "tg.rate_limit",
			slog.String("status", "fail"),
			logger.Err(err),
		)
		return true
	}
	return allowed == 1
}
