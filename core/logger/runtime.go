package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type ctxKey uint8

const (
	keyLogger ctxKey = iota
	keyRID
	keyUpdate
	keyHandler
)

// updateMeta identifies the Telegram update a context was derived from.
type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func valueOf[T any](ctx context.Context, key ctxKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// WithLogger makes log the logger returned by FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	ctx = orBackground(ctx)
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored by WithLogger, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := valueOf[*slog.Logger](ctx, keyLogger); ok && l != nil {
		return l
	}
	return L
}

// WithRID attaches the request id logged as "rid".
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(orBackground(ctx), keyRID, rid)
}

func RIDFrom(ctx context.Context) string {
	rid, _ := valueOf[string](ctx, keyRID)
	return rid
}

// WithUpdateMeta attaches the update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return context.WithValue(orBackground(ctx), keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

// WithHandler names the handler serving the update. An empty name is ignored.
func WithHandler(ctx context.Context, handler string) context.Context {
	ctx = orBackground(ctx)
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, keyHandler, handler)
}

func HandlerFrom(ctx context.Context) string {
	h, _ := valueOf[string](ctx, keyHandler)
	return h
}

func UserIDFrom(ctx context.Context) int64 {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.userID
}

func ChatIDFrom(ctx context.Context) int64 {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.chatID
}

func UpdateIDFrom(ctx context.Context) int {
	m, _ := valueOf[updateMeta](ctx, keyUpdate)
	return m.updateID
}

// Sanitize drops control and format runes other than tab and newline so
// user text cannot break a log line.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit sanitizes s and keeps at most limit runes.
func SanitizeLimit(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = Sanitize(s)
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// BuildRID formats the request id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID rewrites a BuildRID value as dot separated base36 numbers.
// Anything else is returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
