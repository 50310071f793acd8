package gateway

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/telegram/keyboard"
	"github.com/geeksandijan/hrbot/core/telegram/sender"
)

// TeleSender is the subset of *tele.Bot used for delivery.
type TeleSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Observer records the outcome of each send.
type Observer interface {
	MessageSent(kind string, err error)
}

// Telebot delivers messages through the Telegram Bot API.
type Telebot struct {
	bot      TeleSender
	observer Observer
}

// NewTelebot wraps bot. observer may be nil.
func NewTelebot(bot TeleSender, observer Observer) *Telebot {
	return &Telebot{bot: bot, observer: observer}
}

// Send delivers msg to chatID. The context only scopes logging: telebot
// calls are bounded by the HTTP client timeout.
func (t *Telebot) Send(ctx context.Context, chatID int64, msg Message) error {
	start := time.Now()
	what, kind := t.content(msg)
	opts := []interface{}{tele.ModeHTML}
	if markup := Markup(msg.Keyboard); markup != nil {
		opts = append(opts, markup)
	}

	_, err := t.bot.Send(tele.ChatID(chatID), what, opts...)
	if t.observer != nil {
		t.observer.MessageSent(kind, err)
	}
	if err != nil {
		logger.Debug(ctx, "tg", "send",
			slog.String("status", "fail"),
			slog.String("kind", kind),
			slog.Int64("recipient", chatID),
			slog.String("err", sender.Redact(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		return fmt.Errorf("send %s to %d: %w", kind, chatID, err)
	}
	return nil
}

func (t *Telebot) content(msg Message) (interface{}, string) {
	a := msg.Attachment
	if a == nil {
		return msg.Text, "text"
	}
	file := tele.File{FileID: a.FileID}
	name := ""
	if a.File != nil {
		file = tele.FromReader(bytes.NewReader(a.File.Data))
		name = a.File.Name
	}
	switch a.Kind {
	case AttachPhoto:
		return &tele.Photo{File: file, Caption: msg.Text}, a.Kind.String()
	case AttachVoice:
		return &tele.Voice{File: file, Caption: msg.Text}, a.Kind.String()
	default:
		return &tele.Document{File: file, FileName: name, Caption: msg.Text}, AttachDocument.String()
	}
}

// Markup converts a Keyboard into telebot reply markup. Nil stays nil.
func Markup(kb *Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	switch {
	case kb.Remove:
		return keyboard.RemoveKeyboard()
	case kb.RequestContact != "":
		return keyboard.ContactRequest(kb.RequestContact)
	case len(kb.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(kb.Inline))
		for _, row := range kb.Inline {
			r := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				r = append(r, keyboard.InlineBtn{Text: b.Text, Unique: b.Key, Data: b.Value})
			}
			rows = append(rows, r)
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(kb.Reply) > 0:
		markup := keyboard.ReplyButtons(kb.Reply...)
		markup.OneTimeKeyboard = kb.OneTime
		return markup
	}
	return nil
}
