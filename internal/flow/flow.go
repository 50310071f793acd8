// Package flow holds what the conversation flows share: the handler
// contract the router drives and their outbound collaborators.
package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/geeksandijan/hrbot/core/logger"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
)

// Handler is one multi-step conversation. The router calls it with the
// identity lock held and applies the returned decision.
type Handler interface {
	// Name is the flow name as reported by session.Step.Flow.
	Name() string
	// Begin discards s and opens the flow at its first step.
	Begin(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error)
	// Handle consumes one event. s.Step is either a step of this flow or,
	// for a button the flow owns, any step.
	Handle(ctx context.Context, ev event.Event, s *session.Session) (session.Decision, error)
	// Buttons lists the inline button keys the flow owns.
	Buttons() []string
}

// Notifier schedules a staff notification without blocking.
type Notifier interface {
	Notify(ctx context.Context, note notify.Note)
}

// Observer is told about every persistence attempt.
type Observer interface {
	RecordSaved(kind string, err error)
}

// Observe reports to o when it is set.
func Observe(o Observer, kind string, err error) {
	if o != nil {
		o.RecordSaved(kind, err)
	}
}

// MatchToken reports whether text equals one of tokens, ignoring case and
// surrounding space.
func MatchToken(tokens []string, text string) bool {
	text = strings.TrimSpace(text)
	for _, t := range tokens {
		if strings.EqualFold(strings.TrimSpace(t), text) {
			return true
		}
	}
	return false
}

// Advance moves s to next and logs the transition.
func Advance(ctx context.Context, s *session.Session, next session.Step) {
	logger.Debug(ctx, "flow", "advance",
		slog.String("flow", next.Flow()),
		slog.String("step", s.Step.String()),
		slog.String("next_step", next.String()),
	)
	s.Step = next
}

// Touch keeps an active session so its deadline is refreshed and leaves
// an empty one unstored.
func Touch(s *session.Session) session.Decision {
	if s.Active() {
		return session.Keep
	}
	return session.Leave
}
