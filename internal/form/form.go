// Package form is the job application state machine.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

// Inline button keys owned by the machine.
const (
	KeyVacancy = "hr_vac"
	KeySubject = "hr_sub"
)

// Saver persists a finished application.
type Saver interface {
	SaveApplication(ctx context.Context, a *storage.Application) (int64, error)
}

// Options tunes the machine. Zero values select defaults.
type Options struct {
	SkipTokens []string
	Observer   flow.Observer
}

// Machine drives the job application flow.
type Machine struct {
	gw       gateway.Gateway
	saver    Saver
	notifier flow.Notifier
	skip     []string
	observer flow.Observer
}

var _ flow.Handler = (*Machine)(nil)

// New returns a machine replying through gw.
func New(gw gateway.Gateway, saver Saver, notifier flow.Notifier, opts Options) *Machine {
	skip := opts.SkipTokens
	if len(skip) == 0 {
		skip = DefaultSkipTokens
	}
	return &Machine{
		gw:       gw,
		saver:    saver,
		notifier: notifier,
		skip:     skip,
		observer: opts.Observer,
	}
}

func (m *Machine) Name() string { return session.FlowHR }

func (m *Machine) Buttons() []string { return []string{KeyVacancy, KeySubject} }

// Begin resets s and asks for the vacancy.
func (m *Machine) Begin(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	*s = session.Session{Draft: session.Draft{Username: ev.Username}}
	flow.Advance(ctx, s, session.StepChoosingVacancy)
	m.reply(ctx, ev, m.prompt(s))
	return session.Keep, nil
}

// Handle consumes one event for the application flow. Every outcome other
// than completion keeps the session so its deadline is refreshed.
func (m *Machine) Handle(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	if b, ok := ev.Payload.(event.Button); ok {
		return m.button(ctx, ev, s, b)
	}
	if s.Step.Flow() != session.FlowHR {
		return m.Begin(ctx, ev, s)
	}

	switch s.Step {
	case session.StepChoosingVacancy:
		text, ok := ev.TextBody()
		v := validate.Capitalize(text)
		if !ok || !validate.Vacancy(v) {
			return m.reject(ctx, ev, s, msgBadVacancy)
		}
		return m.chooseVacancy(ctx, ev, s, v)

	case session.StepWritingName:
		text, ok := ev.TextBody()
		if !ok || !validate.Name(text) {
			return m.reject(ctx, ev, s, msgBadName)
		}
		s.Draft.Name = text
		return m.next(ctx, ev, s, session.StepWritingAge)

	case session.StepWritingAge:
		text, _ := ev.TextBody()
		age, ok := validate.Age(text)
		if !ok {
			return m.reject(ctx, ev, s, msgBadAge)
		}
		s.Draft.Age = age
		return m.next(ctx, ev, s, session.StepWritingPhone)

	case session.StepWritingPhone:
		phone, ok := phoneFrom(ev)
		if !ok {
			return m.reject(ctx, ev, s, msgBadPhone)
		}
		s.Draft.Phone = phone
		if s.Draft.Vacancy == validate.VacancyMentor {
			return m.next(ctx, ev, s, session.StepChoosingSubject)
		}
		return m.next(ctx, ev, s, session.StepWritingExperience)

	case session.StepChoosingSubject:
		text, ok := ev.TextBody()
		if !ok || !validate.Subject(text) {
			return m.reject(ctx, ev, s, msgBadSubject)
		}
		return m.chooseSubject(ctx, ev, s, text)

	case session.StepWritingExperience:
		text, ok := ev.TextBody()
		if !ok || text == "" {
			return m.reject(ctx, ev, s, msgEmptyText)
		}
		s.Draft.Experience = text
		if s.Draft.Vacancy == validate.VacancyMentor {
			return m.next(ctx, ev, s, session.StepUploadingPhoto)
		}
		return m.next(ctx, ev, s, session.StepWritingWorkplace)

	case session.StepWritingWorkplace:
		text, ok := ev.TextBody()
		if !ok || text == "" {
			return m.reject(ctx, ev, s, msgEmptyText)
		}
		s.Draft.Workplace = text
		return m.next(ctx, ev, s, session.StepUploadingPhoto)

	case session.StepUploadingPhoto:
		p, ok := ev.Payload.(event.Photo)
		if !ok || p.FileID == "" {
			return m.reject(ctx, ev, s, msgBadPhoto)
		}
		s.Draft.PhotoID = p.FileID
		return m.next(ctx, ev, s, session.StepUploadingCV)

	case session.StepUploadingCV:
		switch p := ev.Payload.(type) {
		case event.Document:
			if p.FileID != "" {
				s.Draft.CVFileID = p.FileID
				return m.complete(ctx, ev, s)
			}
		case event.Text:
			if flow.MatchToken(m.skip, p.Body) {
				s.Draft.CVFileID = ""
				return m.complete(ctx, ev, s)
			}
		}
		return m.reject(ctx, ev, s, msgBadCV)
	}
	return session.Leave, fmt.Errorf("form: unexpected step %s", s.Step)
}

func (m *Machine) button(ctx context.Context, ev event.Event, s *session.Session, b event.Button) (session.Decision, error) {
	switch b.Key {
	case KeyVacancy:
		if !validate.Vacancy(b.Value) {
			return m.reject(ctx, ev, s, msgBadVacancy)
		}
		// a vacancy press restarts the flow unless an application is underway
		if s.Step.Flow() != session.FlowHR || s.Step == session.StepChoosingVacancy {
			*s = session.Session{Step: session.StepChoosingVacancy, Draft: session.Draft{Username: ev.Username}}
			return m.chooseVacancy(ctx, ev, s, b.Value)
		}
	case KeySubject:
		if s.Step == session.StepChoosingSubject && validate.Subject(b.Value) {
			return m.chooseSubject(ctx, ev, s, b.Value)
		}
	}
	if s.Step.Flow() != session.FlowHR {
		// a subject press from an expired or finished application
		if b.Key == KeySubject {
			m.reply(ctx, ev, gateway.Text(catalog.Hint))
		}
		return session.Leave, nil
	}
	m.reply(ctx, ev, m.prompt(s))
	return session.Keep, nil
}

func (m *Machine) chooseVacancy(ctx context.Context, ev event.Event, s *session.Session, vacancy string) (session.Decision, error) {
	s.Draft.Vacancy = vacancy
	return m.next(ctx, ev, s, session.StepWritingName)
}

func (m *Machine) chooseSubject(ctx context.Context, ev event.Event, s *session.Session, subject string) (session.Decision, error) {
	s.Draft.Subject = subject
	return m.next(ctx, ev, s, session.StepWritingExperience)
}

func (m *Machine) next(ctx context.Context, ev event.Event, s *session.Session, step session.Step) (session.Decision, error) {
	flow.Advance(ctx, s, step)
	m.reply(ctx, ev, m.prompt(s))
	return session.Keep, nil
}

func (m *Machine) reject(ctx context.Context, ev event.Event, s *session.Session, text string) (session.Decision, error) {
	logger.Debug(ctx, "form", "invalid",
		slog.String("step", s.Step.String()),
		slog.String("kind", kindOf(ev)),
	)
	msg := gateway.Text(text)
	if p := m.prompt(s); p.Keyboard != nil {
		msg.Keyboard = p.Keyboard
	}
	m.reply(ctx, ev, msg)
	return flow.Touch(s), nil
}

// prompt is the question asked at the current step.
func (m *Machine) prompt(s *session.Session) gateway.Message {
	switch s.Step {
	case session.StepChoosingVacancy:
		return gateway.Text(msgChooseVacancy).WithInline(choices(KeyVacancy, validate.Vacancies)...)
	case session.StepWritingName:
		return gateway.Text(fmt.Sprintf(msgVacancyChosen, s.Draft.Vacancy))
	case session.StepWritingAge:
		return gateway.Text(msgAskAge)
	case session.StepWritingPhone:
		return gateway.Text(msgAskPhone)
	case session.StepChoosingSubject:
		return gateway.Text(msgAskSubject).WithInline(choices(KeySubject, validate.Subjects)...)
	case session.StepWritingExperience:
		return gateway.Text(msgAskExperience)
	case session.StepWritingWorkplace:
		return gateway.Text(msgAskWorkplace)
	case session.StepUploadingPhoto:
		return gateway.Text(msgAskPhoto)
	case session.StepUploadingCV:
		return gateway.Text(msgAskCV)
	}
	return gateway.Text(catalog.Hint)
}

func (m *Machine) complete(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error) {
	d := s.Draft
	app := storage.Application{
		UserID:     ev.Identity,
		Name:       d.Name,
		Age:        d.Age,
		Phone:      d.Phone,
		Vacancy:    d.Vacancy,
		Experience: d.Experience,
		Username:   d.Username,
		PhotoID:    d.PhotoID,
		CVFileID:   storage.Ptr(d.CVFileID),
	}
	if app.Mentor() {
		app.Subject = storage.Ptr(d.Subject)
	} else {
		app.Workplace = storage.Ptr(d.Workplace)
	}
	if err := app.Check(); err != nil {
		return m.incomplete(ctx, ev, err)
	}

	id, err := m.saver.SaveApplication(ctx, &app)
	flow.Observe(m.observer, notify.KindApplication, err)
	if errors.Is(err, storage.ErrInvalidRecord) {
		return m.incomplete(ctx, ev, err)
	}
	if err != nil {
		logger.Error(ctx, "form", "save",
			slog.String("status", "fail"),
			slog.String("vacancy", app.Vacancy),
			logger.Err(err),
		)
		// the user resends the CV or the skip answer to retry
		s.Draft.CVFileID = ""
		m.reply(ctx, ev, gateway.Text(msgSaveFailed))
		return session.Keep, nil
	}

	logger.Info(ctx, "form", "save",
		slog.String("status", "ok"),
		slog.Int64("record_id", id),
		slog.String("vacancy", app.Vacancy),
	)
	m.reply(ctx, ev, gateway.Text(msgAccepted).WithReply(catalog.MainMenu()...))
	m.notifier.Notify(ctx, notify.ApplicationNote(app))
	return session.Drop, nil
}

func (m *Machine) incomplete(ctx context.Context, ev event.Event, cause error) (session.Decision, error) {
	logger.Warn(ctx, "form", "complete",
		slog.String("outcome", "invalid"),
		logger.Err(cause),
	)
	m.reply(ctx, ev, gateway.Text(msgIncomplete))
	return session.Drop, nil
}

func (m *Machine) reply(ctx context.Context, ev event.Event, msg gateway.Message) {
	gateway.Reply(ctx, m.gw, ev.ChatID, msg)
}

func choices(key string, values []string) [][]gateway.Button {
	buttons := make([]gateway.Button, 0, len(values))
	for _, v := range values {
		buttons = append(buttons, gateway.Button{Text: v, Key: key, Value: v})
	}
	return gateway.Column(buttons...)
}

func phoneFrom(ev event.Event) (string, bool) {
	switch p := ev.Payload.(type) {
	case event.Text:
		return validate.Phone(p.Body)
	case event.Contact:
		return validate.Phone(p.Phone)
	}
	return "", false
}

func kindOf(ev event.Event) string {
	if ev.Payload == nil {
		return "none"
	}
	return ev.Payload.Kind()
}
