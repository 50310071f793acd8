// Package courses presents the course catalog and collects call back
// requests (leads) for a chosen course and tariff.
package courses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/internal/catalog"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow"
	"github.com/geeksandijan/hrbot/internal/gateway"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
	"github.com/geeksandijan/hrbot/internal/storage"
	"github.com/geeksandijan/hrbot/internal/validate"
)

// Inline button keys. A tariff value is "<course key>:<tariff name>".
const (
	KeyCourse = "course"
	KeyTariff = "tariff"
)

// Saver persists a lead.
type Saver interface {
	SaveLead(ctx context.Context, l *storage.Lead) (int64, error)
}

// Flow drives the course information conversation.
type Flow struct {
	gw       gateway.Gateway
	saver    Saver
	notifier flow.Notifier
	observer flow.Observer
}

var _ flow.Handler = (*Flow)(nil)

// New returns a courses flow. observer may be nil.
func New(gw gateway.Gateway, saver Saver, notifier flow.Notifier, observer flow.Observer) *Flow {
	return &Flow{gw: gw, saver: saver, notifier: notifier, observer: observer}
}

func (f *Flow) Name() string { return session.FlowCourses }

func (f *Flow) Buttons() []string { return []string{KeyCourse, KeyTariff} }

func (f *Flow) Begin(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	*s = session.Session{Draft: session.Draft{Username: ev.Username}}
	flow.Advance(ctx, s, session.StepCourseChoice)
	f.reply(ctx, ev, coursePrompt())
	return session.Keep, nil
}

func (f *Flow) Handle(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	if b, ok := ev.Payload.(event.Button); ok {
		switch b.Key {
		case KeyCourse:
			return f.chooseCourse(ctx, ev, s, b.Value)
		case KeyTariff:
			return f.chooseTariff(ctx, ev, s, b.Value)
		}
	}
	if s.Step.Flow() != session.FlowCourses {
		return f.Begin(ctx, ev, s)
	}

	switch s.Step {
	case session.StepCourseChoice, session.StepCourseTariff:
		f.reply(ctx, ev, prompt(s))
		return session.Keep, nil

	case session.StepCoursePhone:
		var (
			phone string
			ok    bool
		)
		switch p := ev.Payload.(type) {
		case event.Contact:
			phone = strings.TrimSpace(p.Phone)
			if phone != "" && !strings.HasPrefix(phone, "+") {
				phone = "+" + phone
			}
			phone, ok = validate.Phone(phone)
		case event.Text:
			phone, ok = validate.Phone(p.Body)
		}
		if !ok {
			f.reply(ctx, ev, retext(prompt(s), msgBadPhone))
			return session.Keep, nil
		}
		return f.complete(ctx, ev, s, phone)
	}
	return session.Leave, fmt.Errorf("courses: unexpected step %s", s.Step)
}

func (f *Flow) chooseCourse(ctx context.Context, ev event.Event, s *session.Session, key string) (session.Decision, error) {
	c, ok := catalog.CourseByKey(key)
	if !ok {
		f.reply(ctx, ev, coursePrompt())
		return flow.Touch(s), nil
	}
	*s = session.Session{Step: session.StepCourseChoice, Draft: session.Draft{Username: ev.Username, Course: c.Key}}
	flow.Advance(ctx, s, session.StepCourseTariff)
	if c.Summary != "" {
		f.reply(ctx, ev, gateway.Text(c.Summary))
	}
	f.reply(ctx, ev, tariffPrompt(c))
	return session.Keep, nil
}

func (f *Flow) chooseTariff(ctx context.Context, ev event.Event, s *session.Session, value string) (session.Decision, error) {
	key, name, _ := strings.Cut(value, ":")
	c, ok := catalog.CourseByKey(key)
	if !ok {
		f.reply(ctx, ev, coursePrompt())
		return flow.Touch(s), nil
	}
	t, ok := c.Tariff(name)
	if !ok {
		f.reply(ctx, ev, tariffPrompt(c))
		return flow.Touch(s), nil
	}
	if s.Step.Flow() != session.FlowCourses || s.Draft.Course != c.Key {
		*s = session.Session{Step: session.StepCourseTariff, Draft: session.Draft{Username: ev.Username, Course: c.Key}}
	}
	s.Draft.Tariff = t.Name
	flow.Advance(ctx, s, session.StepCoursePhone)
	f.reply(ctx, ev, prompt(s))
	return session.Keep, nil
}

func (f *Flow) complete(ctx context.Context, ev event.Event, s *session.Session, phone string) (session.Decision, error) {
	c, ok := catalog.CourseByKey(s.Draft.Course)
	if !ok || s.Draft.Tariff == "" {
		logger.Warn(ctx, "courses", "complete", slog.String("outcome", "invalid"))
		f.reply(ctx, ev, retext(coursePrompt(), msgIncomplete))
		return session.Drop, nil
	}
	l := storage.Lead{
		UserID:   ev.Identity,
		Username: storage.Ptr(s.Draft.Username),
		Course:   c.Name,
		Tariff:   s.Draft.Tariff,
		Phone:    phone,
	}
	id, err := f.saver.SaveLead(ctx, &l)
	flow.Observe(f.observer, notify.KindLead, err)
	if err != nil {
		logger.Error(ctx, "courses", "save", slog.String("status", "fail"), logger.Err(err))
		f.reply(ctx, ev, gateway.Text(msgSaveFailed))
		return session.Keep, nil
	}
	logger.Info(ctx, "courses", "save",
		slog.String("status", "ok"),
		slog.Int64("record_id", id),
		slog.String("course", c.Key),
	)
	f.reply(ctx, ev, gateway.Text(msgAccepted).WithReply(catalog.MainMenu()...))
	f.notifier.Notify(ctx, notify.LeadNote(l))
	return session.Drop, nil
}

func (f *Flow) reply(ctx context.Context, ev event.Event, msg gateway.Message) {
	gateway.Reply(ctx, f.gw, ev.ChatID, msg)
}

// prompt repeats the question of the current step.
func prompt(s *session.Session) gateway.Message {
	c, ok := catalog.CourseByKey(s.Draft.Course)
	if !ok {
		return coursePrompt()
	}
	switch s.Step {
	case session.StepCourseTariff:
		return tariffPrompt(c)
	case session.StepCoursePhone:
		if t, ok := c.Tariff(s.Draft.Tariff); ok {
			return phonePrompt(t)
		}
		return tariffPrompt(c)
	}
	return coursePrompt()
}

func coursePrompt() gateway.Message {
	list := catalog.Courses()
	buttons := make([]gateway.Button, 0, len(list))
	for _, c := range list {
		buttons = append(buttons, gateway.Button{Text: c.Name, Key: KeyCourse, Value: c.Key})
	}
	return gateway.Text(msgChooseCourse).WithInline(gateway.Column(buttons...)...)
}

func tariffPrompt(c catalog.Course) gateway.Message {
	buttons := make([]gateway.Button, 0, len(c.Tariffs))
	for _, t := range c.Tariffs {
		buttons = append(buttons, gateway.Button{Text: t.Name, Key: KeyTariff, Value: c.Key + ":" + t.Name})
	}
	text := fmt.Sprintf(msgCourseInfo, c.Name, c.Duration, c.PriceInfo)
	return gateway.Text(text).WithInline(gateway.Column(buttons...)...)
}

func phonePrompt(t catalog.Tariff) gateway.Message {
	text := fmt.Sprintf(msgTariffInfo, t.Name, t.Duration, t.SupportMentor, t.ExtraLessons, t.Practice, t.Employment)
	return gateway.Message{
		Text:     text,
		Keyboard: &gateway.Keyboard{RequestContact: msgShareContact, OneTime: true},
	}
}

func retext(m gateway.Message, text string) gateway.Message {
	m.Text = text
	return m
}
