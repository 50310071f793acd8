package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/telegram/callbacks"
	tghelpers "github.com/geeksandijan/hrbot/core/telegram/helpers"
)

// updateWindow remembers update ids for a short while.
type updateWindow struct {
	mu      sync.Mutex
	seen    map[int]time.Time
	keepFor time.Duration
	now     func() time.Time
}

func newUpdateWindow(keepFor time.Duration) *updateWindow {
	return &updateWindow{seen: make(map[int]time.Time), keepFor: keepFor, now: time.Now}
}

// mark records id and reports whether it was already inside the window.
func (w *updateWindow) mark(id int) bool {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for seenID, ts := range w.seen {
		if now.Sub(ts) > w.keepFor {
			delete(w.seen, seenID)
		}
	}
	if _, ok := w.seen[id]; ok {
		return true
	}
	w.seen[id] = now
	return false
}

// recentUpdates keeps processed update IDs to avoid double logging.
var recentUpdates = newUpdateWindow(10 * time.Second)

// LoggerMiddleware logs a single receipt line per update and sets rid.
// It deduplicates by update_id to prevent double logging when middleware is applied on multiple branches.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()
		chatID, userID := tghelpers.Participants(c)

		// a fresh context per update, handlers downstream reuse it
		ctx := tghelpers.NewContext(c)
		rid := tghelpers.RID(c)

		if logger.ShouldSampleDebug() && !recentUpdates.mark(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
			}
			if chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chatID))
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil {
				attrs = append(attrs, slog.Int64("user_id", userID))
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}

			switch {
			case upd.Callback != nil:
				key, payload := callbacks.ParseCallbackData(upd.Callback)
				if key != "" {
					attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
				}
				if payload != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
				}
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}
