package gateway

import (
	"context"
	"log/slog"

	"github.com/geeksandijan/hrbot/core/logger"
)

// Reply sends msg and logs a failure instead of returning it.
func Reply(ctx context.Context, gw Gateway, chatID int64, msg Message) bool {
	if err := gw.Send(ctx, chatID, msg); err != nil {
		logger.Warn(ctx, "tg", "reply",
			slog.String("status", "fail"),
			slog.Int64("chat_id", chatID),
			logger.Err(err),
		)
		return false
	}
	return true
}
