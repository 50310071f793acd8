// Package helpers carries the per-update logging context through telebot.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
)

const (
	ctxKey = "hrbot.ctx"
	ridKey = "rid"
)

// StoreContext keeps ctx on c so later middlewares and handlers reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(ctxKey, ctx)
}

// ContextFrom returns the context saved by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// Participants returns the chat and sender ids of the update, zero when absent.
func Participants(c tele.Context) (chatID, userID int64) {
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return chatID, userID
}

// RID returns the request id of the update, assigning one on first use.
func RID(c tele.Context) string {
	if rid, _ := c.Get(ridKey).(string); rid != "" {
		return rid
	}
	chatID, userID := Participants(c)
	rid := logger.BuildRID(c.Update().ID, chatID, userID)
	c.Set(ridKey, rid)
	return rid
}

// NewContext derives a fresh context tagged with the update's rid and ids
// and stores it on c.
func NewContext(c tele.Context) context.Context {
	chatID, userID := Participants(c)
	ctx := logger.WithRID(context.Background(), RID(c))
	ctx = logger.WithUpdateMeta(ctx, c.Update().ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// BuildContext returns the stored context, or a new one when no middleware
// has run yet.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	return NewContext(c)
}
