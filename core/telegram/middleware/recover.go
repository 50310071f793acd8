package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
	tghelpers "github.com/geeksandijan/hrbot/core/telegram/helpers"
)

// RecoverMiddleware turns a handler panic into an error so the poller keeps
// running. The stack is logged with the update's rid.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			upd := c.Update()
			err = fmt.Errorf("telegram: panic handling update %d: %v", upd.ID, r)
			logger.Error(tghelpers.BuildContext(c), "tg", "panic",
				slog.String("kind", updateKind(upd)),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
