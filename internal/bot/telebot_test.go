package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/geeksandijan/hrbot/internal/event"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot
}

func fromMessage(bot *tele.Bot, msg *tele.Message) tele.Context {
	msg.Sender = &tele.User{ID: 42, Username: "ali"}
	if msg.Chat == nil {
		msg.Chat = &tele.Chat{ID: 42, Type: tele.ChatPrivate}
	}
	return bot.NewContext(tele.Update{ID: 1001, Message: msg})
}

func TestEventFrom(t *testing.T) {
	bot := offlineBot(t)
	tests := []struct {
		name string
		msg  *tele.Message
		want event.Payload
	}{
		{"text", &tele.Message{Text: "/start"}, event.Text{Body: "/start"}},
		{"photo", &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "ph"}}}, event.Photo{FileID: "ph"}},
		{"document", &tele.Message{Document: &tele.Document{File: tele.File{FileID: "cv"}, FileName: "cv.pdf"}}, event.Document{FileID: "cv", Name: "cv.pdf"}},
		{"voice", &tele.Message{Voice: &tele.Voice{File: tele.File{FileID: "vo"}}}, event.Voice{FileID: "vo"}},
		{"contact", &tele.Message{Contact: &tele.Contact{PhoneNumber: "998901234567", UserID: 42}}, event.Contact{Phone: "998901234567", UserID: 42}},
		{"sticker", &tele.Message{Sticker: &tele.Sticker{File: tele.File{FileID: "st"}}}, event.Unsupported{What: "sticker"}},
		{"empty", &tele.Message{}, event.Unsupported{What: "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := EventFrom(fromMessage(bot, tt.msg))
			require.True(t, ok)
			assert.Equal(t, int64(42), ev.Identity)
			assert.Equal(t, int64(42), ev.ChatID)
			assert.Equal(t, "ali", ev.Username)
			assert.Equal(t, 1001, ev.UpdateID)
			assert.Equal(t, tt.want, ev.Payload)
		})
	}
}

func TestEventFromGroupMessage(t *testing.T) {
	bot := offlineBot(t)
	ev, ok := EventFrom(fromMessage(bot, &tele.Message{
		Text: "/answer 7 salom",
		Chat: &tele.Chat{ID: -300, Type: tele.ChatSuperGroup},
	}))
	require.True(t, ok)
	assert.Equal(t, int64(42), ev.Identity)
	assert.Equal(t, int64(-300), ev.ChatID)
}

func TestEventFromCallback(t *testing.T) {
	bot := offlineBot(t)
	c := bot.NewContext(tele.Update{ID: 5, Callback: &tele.Callback{
		Data:   "\fhr_vac|Mentor",
		Sender: &tele.User{ID: 9},
	}})
	ev, ok := EventFrom(c)
	require.True(t, ok)
	assert.Equal(t, int64(9), ev.ChatID)
	assert.Equal(t, event.Button{Key: "hr_vac", Value: "Mentor"}, ev.Payload)
}

func TestEventFromWithoutSender(t *testing.T) {
	bot := offlineBot(t)
	_, ok := EventFrom(bot.NewContext(tele.Update{ID: 3}))
	assert.False(t, ok)
}

type captured struct{ events []event.Event }

func (c *captured) Dispatch(_ context.Context, ev event.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func TestHandlerDispatches(t *testing.T) {
	bot := offlineBot(t)
	d := &captured{}
	require.NoError(t, Handler(d)(fromMessage(bot, &tele.Message{Text: "salom"})))
	require.NoError(t, Handler(d)(bot.NewContext(tele.Update{ID: 4})))
	require.Len(t, d.events, 1)
	assert.Equal(t, event.Text{Body: "salom"}, d.events[0].Payload)
}

func TestRoutesCoverUpdateKinds(t *testing.T) {
	routes := Routes(&captured{})
	endpoints := make([]any, 0, len(routes))
	for _, r := range routes {
		require.NotNil(t, r.Handler)
		endpoints = append(endpoints, r.Endpoint)
	}
	for _, ep := range []string{tele.OnText, tele.OnPhoto, tele.OnDocument, tele.OnVoice, tele.OnContact, tele.OnCallback} {
		assert.Contains(t, endpoints, ep)
	}
}
