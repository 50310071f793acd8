// Package app loads the configuration and wires the HR bot together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/bootstrap"
	corecmd "github.com/geeksandijan/hrbot/core/cmd"
	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/retry"
	"github.com/geeksandijan/hrbot/core/telegram"
	"github.com/geeksandijan/hrbot/core/telegram/middleware"
	"github.com/geeksandijan/hrbot/core/telegram/sender"
	"github.com/geeksandijan/hrbot/internal/admin"
	"github.com/geeksandijan/hrbot/internal/bot"
	"github.com/geeksandijan/hrbot/internal/courses"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow"
	"github.com/geeksandijan/hrbot/internal/form"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/metrics"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
	"github.com/geeksandijan/hrbot/internal/storage"
	"github.com/geeksandijan/hrbot/internal/support"
)

const rateLimitPrefix = "hrbot:rl"

// Deps are the connections an App is built on.
type Deps struct {
	DB *sqlx.DB
	// Bot runs the updates loop. It may be nil when only Dispatch is used.
	Bot *tele.Bot
	// Sender delivers outbound messages. Defaults to Bot.
	Sender gateway.TeleSender
}

// App owns the wired bot and its connections.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	rdb      *redis.Client
	tb       *tele.Bot
	metrics  *metrics.Metrics
	sessions *session.Manager
	queue    *sender.Dispatcher
	notifier *notify.Notifier
	router   *bot.Router
	limiter  middleware.Limiter
}

var (
	_ corecmd.TelegramApp   = (*App)(nil)
	_ corecmd.BackgroundApp = (*App)(nil)
	_ corecmd.Closer        = (*App)(nil)
)

// Bootstrap initializes logging and the database, verifies the bot token and
// wires the app.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: &cfg.Config, Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	tb, err := telegram.NewBot(&cfg.Config)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	a, err := New(ctx, cfg, Deps{DB: res.DB, Bot: tb})
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// New wires the domain on top of deps. The database must be migrated.
func New(ctx context.Context, cfg *Config, deps Deps) (*App, error) {
	if deps.DB == nil {
		return nil, errors.New("app: database is required")
	}
	out := deps.Sender
	if out == nil && deps.Bot != nil {
		out = deps.Bot
	}
	if out == nil {
		return nil, errors.New("app: bot or sender is required")
	}

	a := &App{
		cfg:     cfg,
		db:      deps.DB,
		tb:      deps.Bot,
		metrics: metrics.New(),
	}

	store, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManager(store, a.metrics)

	gw := gateway.NewTelebot(out, a.metrics)
	repo := storage.New(deps.DB)

	a.queue = sender.NewDispatcher(sender.Options{
		QueueSize: cfg.Notify.QueueSize,
		Workers:   cfg.Notify.Workers,
	})
	a.notifier = notify.New(gw, notify.Options{
		Routes:     a.routes(),
		EscalateTo: cfg.Telegram.AdminID,
		Policy: retry.Policy{
			MaxAttempts: cfg.Notify.MaxAttempts,
			Backoff:     time.Duration(cfg.Notify.BackoffMS) * time.Millisecond,
		},
		Queue:    a.queue,
		Observer: a.metrics,
	})

	flows := []flow.Handler{
		form.New(gw, repo, a.notifier, form.Options{SkipTokens: cfg.Bot.CVSkipTokens, Observer: a.metrics}),
		support.New(gw, repo, a.notifier, support.Options{Location: cfg.Location(), Observer: a.metrics}),
		courses.New(gw, repo, a.notifier, a.metrics),
	}
	staff := admin.New(gw, repo, admin.Options{
		Admins:         cfg.Admins(),
		SupportGroupID: cfg.Bot.SupportGroupID,
		RecentLimit:    cfg.Bot.RecentLimit,
	})
	a.router, err = bot.New(gw, a.sessions, bot.Options{Flows: flows, Admin: staff, Observer: a.metrics})
	if err != nil {
		a.queue.Close()
		if a.rdb != nil {
			_ = a.rdb.Close()
		}
		return nil, err
	}

	if a.rdb != nil && cfg.RateLimit.IntervalMS > 0 {
		window := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		a.limiter = middleware.NewRedisLimiter(a.rdb, 1, window, rateLimitPrefix)
	}

	logger.Info(ctx, "app", "wired",
		slog.String("session_backend", cfg.Session.Backend),
		slog.Int("admins", len(cfg.Admins())),
		slog.Int64("group_id", cfg.Bot.GroupID),
		slog.Int64("support_group_id", cfg.Bot.SupportGroupID),
		slog.String("metrics_listen", cfg.Metrics.Listen),
	)
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	ttl := a.cfg.SessionTTL()
	if a.cfg.Session.Backend != BackendRedis {
		return session.NewMemoryStore(ttl), nil
	}
	rdb, err := session.DialRedis(ctx, a.cfg.Session.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.rdb = rdb
	return session.NewRedisStore(rdb, ttl), nil
}

// routes sends applications to the admin and the group, tickets to the
// support group and leads to the group.
func (a *App) routes() map[string][]notify.Recipient {
	var (
		adminChat   = notify.Recipient{Name: "admin", ChatID: a.cfg.Telegram.AdminID}
		group       = notify.Recipient{Name: "group", ChatID: a.cfg.Bot.GroupID}
		supportChat = notify.Recipient{Name: "support", ChatID: a.cfg.Bot.SupportGroupID}
	)
	pick := func(rs ...notify.Recipient) []notify.Recipient {
		var out []notify.Recipient
		for _, r := range rs {
			if r.ChatID != 0 {
				out = append(out, r)
			}
		}
		return out
	}
	return map[string][]notify.Recipient{
		notify.KindApplication: pick(adminChat, group),
		notify.KindTicket:      pick(supportChat),
		notify.KindLead:        pick(group),
	}
}

// Dispatch hands one event to the router.
func (a *App) Dispatch(ctx context.Context, ev event.Event) error {
	return a.router.Dispatch(ctx, ev)
}

// TelegramRunOptions binds the router to the bot.
func (a *App) TelegramRunOptions() (telegram.RunOptions, error) {
	if a.tb == nil {
		return telegram.RunOptions{}, errors.New("app: no bot to run")
	}
	return telegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.router.Registry(),
		Bot:         a.tb,
		Dispatcher:  a.queue,
		Middlewares: telegram.DefaultMiddlewares(&a.cfg.Config, telegram.MiddlewareOptions{Limiter: a.limiter}),
		Routes:      bot.Routes(a.router),
		OnStop: func(context.Context, telegram.Runtime) error {
			a.sessions.Close()
			a.notifier.Close()
			return nil
		},
	}, nil
}

// Background returns the session sweeper and, when configured, the metrics
// server.
func (a *App) Background() []corecmd.Job {
	var jobs []corecmd.Job
	if a.cfg.Session.Backend == BackendMemory {
		interval := time.Duration(a.cfg.Session.SweepIntervalSeconds) * time.Second
		jobs = append(jobs, corecmd.Job{Name: "sweeper", Run: func(ctx context.Context) error {
			return a.sessions.RunSweeper(ctx, interval)
		}})
	}
	if a.cfg.Metrics.Listen != "" {
		h := a.metrics.Handler(a.checks()...)
		jobs = append(jobs, corecmd.Job{Name: "metrics", Run: func(ctx context.Context) error {
			return metrics.Serve(ctx, a.cfg.Metrics.Listen, h)
		}})
	}
	return jobs
}

func (a *App) checks() []metrics.Check {
	checks := []metrics.Check{{Name: "db", Run: a.db.PingContext}}
	if a.rdb != nil {
		checks = append(checks, metrics.Check{Name: "redis", Run: func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		}})
	}
	return checks
}

// Close drains pending notifications and closes the connections.
func (a *App) Close() error {
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.notifier != nil {
		a.notifier.Close()
	} else if a.queue != nil {
		a.queue.Close()
	}
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
