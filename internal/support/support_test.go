package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow/flowtest"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/gateway/gatewaytest"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
	"github.com/geeksandijan/hrbot/internal/storage"
)

var tashkent = time.FixedZone("UTC+5", 5*60*60)

type brokenSaver struct{ calls int }

func (b *brokenSaver) SaveTicket(context.Context, *storage.Ticket) (int64, error) {
	b.calls++
	return 0, errors.New("database is locked")
}

type fixture struct {
	t     *testing.T
	gw    *gatewaytest.Recorder
	notes *flowtest.Notes
	m     *session.Manager
	repo  *storage.Repository
	flow  *Flow
}

func newFixture(t *testing.T, at time.Time, saver Saver) *fixture {
	f := &fixture{
		t:     t,
		gw:    gatewaytest.New(),
		notes: &flowtest.Notes{},
		m:     flowtest.NewManager(),
	}
	if saver == nil {
		f.repo = flowtest.NewRepository(t)
		saver = f.repo
	}
	f.flow = New(f.gw, saver, f.notes, Options{
		Location: tashkent,
		Now:      func() time.Time { return at },
	})
	return f
}

func (f *fixture) send(p event.Payload) {
	f.t.Helper()
	flowtest.Drive(f.t, f.m, f.flow, event.Event{Identity: 11, ChatID: 11, Username: "sardor", Payload: p})
}

func (f *fixture) texts() []string { return f.gw.Texts(11) }

func (f *fixture) begin() {
	f.t.Helper()
	f.send(event.Text{Body: "/start"})
	require.Equal(f.t, session.StepSupportCategory, flowtest.Step(f.t, f.m, 11))
}

func TestTextQuestionWithSkippedPhone(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 12, 0, 0, 0, tashkent), nil)
	f.begin()

	f.send(event.Button{Key: KeyCategory, Value: "payment"})
	assert.Equal(t, session.StepSupportQuestion, flowtest.Step(t, f.m, 11))

	f.send(event.Text{Body: "salom"})
	assert.Equal(t, session.StepSupportPhone, flowtest.Step(t, f.m, 11))
	f.send(event.Text{Body: "O'tkazib yuborish"})

	assert.Equal(t, session.StepNone, flowtest.Step(t, f.m, 11))
	texts := f.texts()
	assert.Equal(t, msgAccepted, texts[len(texts)-1])

	tickets, err := f.repo.RecentTickets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	tk := tickets[0]
	assert.Equal(t, "💳 To'lov", tk.Category)
	assert.Equal(t, "salom", tk.Question)
	assert.Nil(t, tk.Phone)
	assert.Nil(t, tk.VoiceID)
	assert.Equal(t, storage.TicketPending, tk.Status)
	require.NotNil(t, tk.Username)
	assert.Equal(t, "sardor", *tk.Username)

	notes := f.notes.All()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindTicket, notes[0].Kind)
	assert.NotContains(t, notes[0].Text, "[Night queue]")
	assert.Contains(t, notes[0].Text, fmt.Sprintf("#%d", tk.ID))
}

func TestPhoneInsideQuestionSkipsPhoneStep(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 10, 0, 0, 0, tashkent), nil)
	f.begin()
	f.send(event.Button{Key: KeyCategory, Value: "courses"})
	f.send(event.Text{Body: "Python kursi qachon boshlanadi? Raqamim +998 90 123-45-67"})

	assert.Equal(t, session.StepNone, flowtest.Step(t, f.m, 11))
	tickets, err := f.repo.RecentTickets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].Phone)
	assert.Equal(t, "+998901234567", *tickets[0].Phone)

	texts := f.texts()
	assert.Equal(t, fmt.Sprintf(msgPhoneNoted, "+998901234567"), texts[len(texts)-1])
}

func TestVoiceQuestionAtNight(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 22, 30, 0, 0, tashkent), nil)
	f.begin()
	f.send(event.Button{Key: KeyCategory, Value: "other"})
	f.send(event.Voice{FileID: "voice-1"})
	assert.Equal(t, msgVoiceAccepted, f.texts()[len(f.texts())-1])

	f.send(event.Text{Body: "12"})
	assert.Equal(t, msgBadPhone, f.texts()[len(f.texts())-1])
	f.send(event.Contact{Phone: "998901234567"})

	tickets, err := f.repo.RecentTickets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, voiceQuestion, tickets[0].Question)
	require.NotNil(t, tickets[0].VoiceID)
	assert.Equal(t, "voice-1", *tickets[0].VoiceID)

	assert.Contains(t, f.texts(), msgAcceptedNight)
	notes := f.notes.All()
	require.Len(t, notes, 1)
	assert.True(t, strings.HasPrefix(notes[0].Text, "[Night queue] "))
	require.Len(t, notes[0].Attachments, 1)
	assert.Equal(t, gateway.AttachVoice, notes[0].Attachments[0].Kind)
}

func TestQuestionValidation(t *testing.T) {
	f := newFixture(t, time.Now(), nil)
	f.begin()

	f.send(event.Text{Body: "hali"})
	assert.Equal(t, session.StepSupportCategory, flowtest.Step(t, f.m, 11))
	assert.Equal(t, msgChooseCategory, f.texts()[len(f.texts())-1])

	f.send(event.Button{Key: KeyCategory, Value: "bogus"})
	assert.Equal(t, session.StepSupportCategory, flowtest.Step(t, f.m, 11))

	f.send(event.Button{Key: KeyCategory, Value: "location"})
	f.send(event.Text{Body: "abc"})
	assert.Equal(t, msgShortQuestion, f.texts()[len(f.texts())-1])
	f.send(event.Photo{FileID: "p"})
	assert.Equal(t, msgBadQuestion, f.texts()[len(f.texts())-1])
	assert.Equal(t, session.StepSupportQuestion, flowtest.Step(t, f.m, 11))

	// another category press mid-question repeats the question
	f.send(event.Button{Key: KeyCategory, Value: "payment"})
	assert.Equal(t, fmt.Sprintf(msgAskQuestion, "📍 Manzil"), f.texts()[len(f.texts())-1])
}

func TestSaveFailureKeepsTicketDraft(t *testing.T) {
	saver := &brokenSaver{}
	f := newFixture(t, time.Now(), saver)
	f.begin()
	f.send(event.Button{Key: KeyCategory, Value: "other"})
	f.send(event.Text{Body: "Sertifikat qachon beriladi?"})
	f.send(event.Text{Body: "skip"})

	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, msgSaveFailed, f.texts()[len(f.texts())-1])
	assert.Equal(t, session.StepSupportPhone, flowtest.Step(t, f.m, 11))
	assert.Zero(t, f.notes.Len())
}

func TestNight(t *testing.T) {
	f := New(nil, nil, nil, Options{Location: tashkent})
	tests := []struct {
		hour  int
		night bool
	}{
		{8, true},
		{9, false},
		{18, false},
		{19, true},
		{23, true},
	}
	for _, tt := range tests {
		at := time.Date(2024, 5, 1, tt.hour, 59, 0, 0, tashkent)
		assert.Equal(t, tt.night, f.Night(at), "hour %d", tt.hour)
	}
	// 05:00 UTC is 10:00 in UTC+5
	assert.False(t, f.Night(time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)))
}
