// Package session keeps per-identity conversation progress with idle expiry.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the idle timeout applied when none is configured.
const DefaultTTL = time.Hour

// ErrClosed is returned by Manager.Update after Close.
var ErrClosed = errors.New("session: manager closed")

// Session is the ephemeral form progress of one identity.
type Session struct {
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Draft holds the answers collected so far. Each flow uses its own subset.
type Draft struct {
	Username string `json:"username,omitempty"`

	// job application
	Vacancy    string `json:"vacancy,omitempty"`
	Name       string `json:"name,omitempty"`
	Age        int    `json:"age,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Experience string `json:"experience,omitempty"`
	Workplace  string `json:"workplace,omitempty"`
	PhotoID    string `json:"photo_id,omitempty"`
	CVFileID   string `json:"cv_file_id,omitempty"`

	// support ticket
	Category string `json:"category,omitempty"`
	Question string `json:"question,omitempty"`
	VoiceID  string `json:"voice_id,omitempty"`

	// course lead
	Course string `json:"course,omitempty"`
	Tariff string `json:"tariff,omitempty"`
}

// Active reports whether a flow is in progress.
func (s Session) Active() bool { return s.Step != StepNone }

// Expired reports whether the session is past its deadline at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions. Implementations must never return an expired session.
type Store interface {
	Get(ctx context.Context, id int64) (Session, bool, error)
	// Put replaces the session and pushes its deadline to now + TTL.
	Put(ctx context.Context, id int64, s Session) error
	Delete(ctx context.Context, id int64) error
	// Sweep removes expired sessions and returns how many were dropped.
	Sweep(ctx context.Context) (int, error)
}
