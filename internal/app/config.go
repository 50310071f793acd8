package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/geeksandijan/hrbot/core/config"
	coredatabase "github.com/geeksandijan/hrbot/core/database"
	"github.com/geeksandijan/hrbot/internal/admin"
	"github.com/geeksandijan/hrbot/internal/session"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const (
	defaultTimezoneOffset = 5
	defaultSweepInterval  = 60
	defaultNotifyAttempts = 3
	defaultNotifyBackoff  = 1000
	defaultNotifyWorkers  = 2
	defaultNotifyQueue    = 64
)

// BotConfig holds the HR bot specific settings.
type BotConfig struct {
	// AdminIDs extends telegram.admin_id.
	AdminIDs       []int64 `yaml:"admin_ids" envconfig:"ADMIN_IDS"`
	GroupID        int64   `yaml:"group_id" envconfig:"GROUP_ID"`
	SupportGroupID int64   `yaml:"support_group_id" envconfig:"SUPPORT_GROUP_ID"`
	// TimezoneOffsetHours positions the support working hours. Nil means UTC+5.
	TimezoneOffsetHours *int     `yaml:"timezone_offset_hours" envconfig:"TIMEZONE_OFFSET"`
	CVSkipTokens        []string `yaml:"cv_skip_tokens" envconfig:"CV_SKIP_TOKENS"`
	RecentLimit         int      `yaml:"recent_limit" envconfig:"RECENT_LIMIT"`
}

// SessionConfig selects where conversations are kept.
type SessionConfig struct {
	TimeoutSeconds       int    `yaml:"timeout_seconds" envconfig:"SESSION_TIMEOUT"`
	Backend              string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	RedisURL             string `yaml:"redis_url" envconfig:"REDIS_URL"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// NotifyConfig bounds staff notification delivery.
type NotifyConfig struct {
	MaxAttempts int `yaml:"max_attempts" envconfig:"NOTIFY_MAX_ATTEMPTS"`
	BackoffMS   int `yaml:"backoff_ms" envconfig:"NOTIFY_BACKOFF_MS"`
	Workers     int `yaml:"workers" envconfig:"NOTIFY_WORKERS"`
	QueueSize   int `yaml:"queue_size" envconfig:"NOTIFY_QUEUE_SIZE"`
}

// MetricsConfig enables the metrics and health endpoint.
type MetricsConfig struct {
	// Listen is the HTTP address; empty disables the endpoint.
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the whole bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Bot      BotConfig           `yaml:"bot"`
	Session  SessionConfig       `yaml:"session"`
	Notify   NotifyConfig        `yaml:"notify"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads path, overlays the environment and applies defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Bot.SupportGroupID == 0 {
		c.Bot.SupportGroupID = c.Bot.GroupID
	}
	if c.Bot.TimezoneOffsetHours == nil {
		offset := defaultTimezoneOffset
		c.Bot.TimezoneOffsetHours = &offset
	}
	if h := *c.Bot.TimezoneOffsetHours; h < -12 || h > 14 {
		return fmt.Errorf("bot.timezone_offset_hours %d is out of range", h)
	}
	if c.Bot.RecentLimit <= 0 {
		c.Bot.RecentLimit = admin.DefaultRecentLimit
	}

	if c.Session.TimeoutSeconds <= 0 {
		c.Session.TimeoutSeconds = int(session.DefaultTTL / time.Second)
	}
	if c.Session.SweepIntervalSeconds <= 0 {
		c.Session.SweepIntervalSeconds = defaultSweepInterval
	}
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "":
		c.Session.Backend = BackendMemory
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Session.RedisURL) == "" {
			return fmt.Errorf("session.redis_url is required when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", c.Session.Backend)
	}

	if c.Notify.MaxAttempts <= 0 {
		c.Notify.MaxAttempts = defaultNotifyAttempts
	}
	if c.Notify.BackoffMS < 0 {
		return fmt.Errorf("notify.backoff_ms must be >= 0")
	}
	if c.Notify.BackoffMS == 0 {
		c.Notify.BackoffMS = defaultNotifyBackoff
	}
	if c.Notify.Workers <= 0 {
		c.Notify.Workers = defaultNotifyWorkers
	}
	if c.Notify.QueueSize <= 0 {
		c.Notify.QueueSize = defaultNotifyQueue
	}
	return nil
}

// Admins returns the allowlist: telegram.admin_id followed by bot.admin_ids.
func (c *Config) Admins() []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range append([]int64{c.Telegram.AdminID}, c.Bot.AdminIDs...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Location is the fixed zone of the configured offset.
func (c *Config) Location() *time.Location {
	offset := defaultTimezoneOffset
	if c.Bot.TimezoneOffsetHours != nil {
		offset = *c.Bot.TimezoneOffsetHours
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*60*60)
}

// SessionTTL is the idle timeout of a conversation.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TimeoutSeconds) * time.Second
}
