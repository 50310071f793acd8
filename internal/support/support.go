// Package support collects support tickets: a category, a text or voice
// question and an optional phone number.
package support

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
	"github.com/geeksandijan/hrbot/internal/storage"
	"github.com/geeksandijan/hrbot/internal/validate"
)

// KeyCategory is the inline button key for category presses.
const KeyCategory = "sup_cat"

// Working hours in the local zone, [OpenHour, CloseHour).
const (
	OpenHour  = 9
	CloseHour = 19
)

// Saver persists a ticket.
type Saver interface {
	SaveTicket(ctx context.Context, t *storage.Ticket) (int64, error)
}

// Options tunes the flow. Zero values select defaults.
type Options struct {
	SkipTokens []string
	// Location is the zone working hours are evaluated in. Defaults to UTC+5.
	Location *time.Location
	Now      func() time.Time
	Observer flow.Observer
}

// Flow drives the support ticket conversation.
type Flow struct {
	gw       gateway.Gateway
	saver    Saver
	notifier flow.Notifier
	skip     []string
	loc      *time.Location
	now      func() time.Time
	observer flow.Observer
}

var _ flow.Handler = (*Flow)(nil)

// New returns a support flow replying through gw.
func New(gw gateway.Gateway, saver Saver, notifier flow.Notifier, opts Options) *Flow {
	f := &Flow{
		gw:       gw,
		saver:    saver,
		notifier: notifier,
		skip:     opts.SkipTokens,
		loc:      opts.Location,
		now:      opts.Now,
		observer: opts.Observer,
	}
	if len(f.skip) == 0 {
		f.skip = DefaultSkipTokens
	}
	if f.loc == nil {
		f.loc = time.FixedZone("UTC+5", 5*60*60)
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

func (f *Flow) Name() string { return session.FlowSupport }

func (f *Flow) Buttons() []string { return []string{KeyCategory} }

// Night reports whether t falls outside working hours.
func (f *Flow) Night(t time.Time) bool {
	h := t.In(f.loc).Hour()
	return h < OpenHour || h >= CloseHour
}

func (f *Flow) Begin(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	*s = session.Session{Draft: session.Draft{Username: ev.Username}}
	flow.Advance(ctx, s, session.StepSupportCategory)
	f.reply(ctx, ev, categoryPrompt())
	return session.Keep, nil
}

func (f *Flow) Handle(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	if b, ok := ev.Payload.(event.Button); ok && b.Key == KeyCategory {
		return f.chooseCategory(ctx, ev, s, b.Value)
	}
	if s.Step.Flow() != session.FlowSupport {
		return f.Begin(ctx, ev, s)
	}

	switch s.Step {
	case session.StepSupportCategory:
		f.reply(ctx, ev, categoryPrompt())
		return session.Keep, nil

	case session.StepSupportQuestion:
		switch p := ev.Payload.(type) {
		case event.Voice:
			s.Draft.Question = voiceQuestion
			s.Draft.VoiceID = p.FileID
			flow.Advance(ctx, s, session.StepSupportPhone)
			f.reply(ctx, ev, gateway.Text(msgVoiceAccepted))
			return session.Keep, nil
		case event.Text:
			text, _ := ev.TextBody()
			if utf8.RuneCountInString(text) < minQuestion {
				f.reply(ctx, ev, gateway.Text(msgShortQuestion))
				return session.Keep, nil
			}
			s.Draft.Question = text
			s.Draft.VoiceID = ""
			if phone, ok := validate.FindPhone(text); ok {
				s.Draft.Phone = phone
				return f.complete(ctx, ev, s)
			}
			flow.Advance(ctx, s, session.StepSupportPhone)
			f.reply(ctx, ev, gateway.Text(msgAskPhone))
			return session.Keep, nil
		}
		f.reply(ctx, ev, gateway.Text(msgBadQuestion))
		return session.Keep, nil

	case session.StepSupportPhone:
		switch p := ev.Payload.(type) {
		case event.Text:
			if flow.MatchToken(f.skip, p.Body) {
				s.Draft.Phone = ""
				return f.complete(ctx, ev, s)
			}
			if phone, ok := validate.Phone(p.Body); ok {
				s.Draft.Phone = phone
				return f.complete(ctx, ev, s)
			}
		case event.Contact:
			if phone, ok := validate.Phone(p.Phone); ok {
				s.Draft.Phone = phone
				return f.complete(ctx, ev, s)
			}
		}
		f.reply(ctx, ev, gateway.Text(msgBadPhone))
		return session.Keep, nil
	}
	return session.Leave, fmt.Errorf("support: unexpected step %s", s.Step)
}

func (f *Flow) chooseCategory(ctx context.Context, ev event.Event, s *session.Session, key string) (session.Decision, error) {
	c, ok := categoryByKey(key)
	if !ok {
		f.reply(ctx, ev, categoryPrompt())
		return flow.Touch(s), nil
	}
	if s.Step.Flow() == session.FlowSupport && s.Step != session.StepSupportCategory {
		f.reply(ctx, ev, prompt(s))
		return session.Keep, nil
	}
	*s = session.Session{Step: session.StepSupportCategory, Draft: session.Draft{Username: ev.Username}}
	s.Draft.Category = c.Label
	flow.Advance(ctx, s, session.StepSupportQuestion)
	f.reply(ctx, ev, gateway.Text(fmt.Sprintf(msgAskQuestion, c.Label)))
	return session.Keep, nil
}

func (f *Flow) complete(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	d := s.Draft
	if d.Category == "" || d.Question == "" {
		logger.Warn(ctx, "support", "complete", slog.String("outcome", "invalid"))
		f.reply(ctx, ev, gateway.Text(msgIncomplete))
		return session.Drop, nil
	}

	now := f.now()
	t := storage.Ticket{
		UserID:    ev.Identity,
		Username:  storage.Ptr(d.Username),
		Phone:     storage.Ptr(d.Phone),
		Category:  d.Category,
		Question:  d.Question,
		VoiceID:   storage.Ptr(d.VoiceID),
		Status:    storage.TicketPending,
		CreatedAt: now.UTC(),
	}
	id, err := f.saver.SaveTicket(ctx, &t)
	flow.Observe(f.observer, notify.KindTicket, err)
	if err != nil {
		logger.Error(ctx, "support", "save", slog.String("status", "fail"), logger.Err(err))
		f.reply(ctx, ev, gateway.Text(msgSaveFailed))
		return session.Keep, nil
	}
	t.ID = id

	night := f.Night(now)
	logger.Info(ctx, "support", "save",
		slog.String("status", "ok"),
		slog.Int64("record_id", id),
		slog.Bool("night", night),
	)
	if night {
		f.reply(ctx, ev, gateway.Text(msgAcceptedNight))
	} else {
		f.reply(ctx, ev, gateway.Text(msgAccepted))
	}
	if d.Phone != "" {
		f.reply(ctx, ev, gateway.Text(fmt.Sprintf(msgPhoneNoted, d.Phone)))
	}
	f.notifier.Notify(ctx, notify.TicketNote(t, night))
	return session.Drop, nil
}

func (f *Flow) reply(ctx context.Context, ev event.Event, msg gateway.Message) {
	gateway.Reply(ctx, f.gw, ev.ChatID, msg)
}

// prompt repeats the question of the current step.
func prompt(s *session.Session) gateway.Message {
	switch s.Step {
	case session.StepSupportQuestion:
		return gateway.Text(fmt.Sprintf(msgAskQuestion, s.Draft.Category))
	case session.StepSupportPhone:
		return gateway.Text(msgAskPhone)
	}
	return categoryPrompt()
}

func categoryPrompt() gateway.Message {
	buttons := make([]gateway.Button, 0, len(Categories))
	for _, c := range Categories {
		buttons = append(buttons, gateway.Button{Text: c.Label, Key: KeyCategory, Value: c.Key})
	}
	return gateway.Text(msgChooseCategory).WithInline(gateway.Column(buttons...)...)
}
