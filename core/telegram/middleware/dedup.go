package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
	tghelpers "github.com/geeksandijan/hrbot/core/telegram/helpers"
)

// DefaultDedupWindow covers Telegram redelivering a webhook update that
// was not acknowledged in time.
const DefaultDedupWindow = 2 * time.Minute

// DedupMiddleware drops updates whose id was already handled within keepFor.
func DedupMiddleware(keepFor time.Duration) tele.MiddlewareFunc {
	if keepFor <= 0 {
		keepFor = DefaultDedupWindow
	}
	window := newUpdateWindow(keepFor)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			id := c.Update().ID
			if id != 0 && window.mark(id) {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelInfo, "update.duplicate",
					slog.String("status", "skip"),
					slog.Int("update_id", id),
				)
				return nil
			}
			return next(c)
		}
	}
}
