package bot

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/core/telegram"
	"github.com/geeksandijan/hrbot/core/telegram/callbacks"
	tghelpers "github.com/geeksandijan/hrbot/core/telegram/helpers"
	tgsender "github.com/geeksandijan/hrbot/core/telegram/sender"
	"github.com/geeksandijan/hrbot/internal/event"
)

// Dispatcher consumes events.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev event.Event) error
}

// EventFrom converts a telebot update. ok is false for updates without a sender.
func EventFrom(c tele.Context) (event.Event, bool) {
	user := c.Sender()
	if user == nil {
		return event.Event{}, false
	}
	chatID, _ := tghelpers.Participants(c)
	if chatID == 0 {
		chatID = user.ID
	}
	ev := event.Event{
		Identity: user.ID,
		ChatID:   chatID,
		Username: user.Username,
		UpdateID: c.Update().ID,
	}

	if cb := c.Callback(); cb != nil {
		key, value := callbacks.ParseCallbackData(cb)
		ev.Payload = event.Button{Key: key, Value: value}
		return ev, true
	}

	msg := c.Message()
	if msg == nil {
		ev.Payload = event.Unsupported{What: "update"}
		return ev, true
	}
	switch {
	case msg.Photo != nil:
		// telebot keeps the largest size
		ev.Payload = event.Photo{FileID: msg.Photo.FileID}
	case msg.Document != nil:
		ev.Payload = event.Document{FileID: msg.Document.FileID, Name: msg.Document.FileName}
	case msg.Voice != nil:
		ev.Payload = event.Voice{FileID: msg.Voice.FileID}
	case msg.Contact != nil:
		ev.Payload = event.Contact{Phone: msg.Contact.PhoneNumber, UserID: msg.Contact.UserID}
	case msg.Text != "":
		ev.Payload = event.Text{Body: msg.Text}
	default:
		ev.Payload = event.Unsupported{What: unsupportedKind(msg)}
	}
	return ev, true
}

func unsupportedKind(msg *tele.Message) string {
	switch {
	case msg.Sticker != nil:
		return "sticker"
	case msg.Video != nil:
		return "video"
	case msg.VideoNote != nil:
		return "video_note"
	case msg.Audio != nil:
		return "audio"
	case msg.Animation != nil:
		return "animation"
	case msg.Location != nil:
		return "location"
	}
	return "other"
}

// Handler adapts d to telebot. Callbacks are acknowledged before dispatch
// so the client stops its spinner.
func Handler(d Dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if c.Callback() != nil {
			if err := c.Respond(); err != nil {
				logger.Debug(ctx, "tg", "callback.ack",
					slog.String("status", "fail"),
					slog.String("err", tgsender.Redact(err)),
				)
			}
		}
		ev, ok := EventFrom(c)
		if !ok {
			return nil
		}
		// Dispatch logs and answers its own failures.
		_ = d.Dispatch(ctx, ev)
		return nil
	}
}

// Routes binds every update kind the bot understands to d. Commands reach
// OnText because no per-command handler is registered.
func Routes(d Dispatcher) []telegram.Route {
	h := Handler(d)
	endpoints := []string{
		tele.OnText,
		tele.OnPhoto,
		tele.OnDocument,
		tele.OnVoice,
		tele.OnContact,
		tele.OnCallback,
		tele.OnSticker,
		tele.OnVideo,
		tele.OnVideoNote,
		tele.OnAudio,
		tele.OnAnimation,
		tele.OnLocation,
	}
	routes := make([]telegram.Route, 0, len(endpoints))
	for _, ep := range endpoints {
		routes = append(routes, telegram.Route{Endpoint: ep, Handler: h})
	}
	return routes
}
