package telegram

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/geeksandijan/hrbot/core/config"
	"github.com/geeksandijan/hrbot/core/telegram/middleware"
)

// MiddlewareOptions tunes DefaultMiddlewares.
type MiddlewareOptions struct {
	OnLimited tele.HandlerFunc
	// Limiter replaces the in-process rate limiter, e.g. with a redis one.
	Limiter middleware.Limiter
	// DedupWindow is how long update ids are remembered. Zero uses the default.
	DedupWindow time.Duration
}

// DefaultMiddlewares builds the shared middleware chain for bots.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "dedup", Use: middleware.DedupMiddleware(opts.DedupWindow)},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 || opts.Limiter != nil {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: opts.OnLimited,
					Limiter:   opts.Limiter,
				}),
			})
		}
	}

	return mws
}
