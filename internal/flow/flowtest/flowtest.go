// Package flowtest drives conversation flows in tests.
package flowtest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geeksandijan/hrbot/core/database"
	"github.com/geeksandijan/hrbot/internal/event"
	"github.com/geeksandijan/hrbot/internal/flow"
	"github.com/geeksandijan/hrbot/internal/notify"
	"github.com/geeksandijan/hrbot/internal/session"
	"github.com/geeksandijan/hrbot/internal/storage"
)

// Notes records scheduled notifications.
type Notes struct {
	mu    sync.Mutex
	notes []notify.Note
}

func (n *Notes) Notify(_ context.Context, note notify.Note) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

// All returns a copy of the recorded notes.
func (n *Notes) All() []notify.Note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Note(nil), n.notes...)
}

// Len returns the number of recorded notes.
func (n *Notes) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

// NewManager returns a session manager over a fresh memory store.
func NewManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(time.Hour), nil)
}

// NewRepository opens a migrated SQLite database in a temp dir.
func NewRepository(t *testing.T) *storage.Repository {
	t.Helper()
	ctx := context.Background()
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "hr.db")}
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(ctx, db, cfg))
	return storage.New(db)
}

// Drive feeds ev to h the way the router does: /start begins the flow,
// other events without a session are ignored unless they are button presses.
func Drive(t *testing.T, m *session.Manager, h flow.Handler, ev event.Event) {
	t.Helper()
	ctx := context.Background()
	err := m.Update(ctx, ev.Identity, func(s *session.Session, found bool) (session.Decision, error) {
		if name, _, ok := ev.Command(); ok && name == "start" {
			return h.Begin(ctx, ev, s)
		}
		if _, isButton := ev.Payload.(event.Button); !found && !isButton {
			return session.Leave, nil
		}
		return h.Handle(ctx, ev, s)
	})
	require.NoError(t, err)
}

// Step returns the stored step of id, StepNone when there is no session.
func Step(t *testing.T, m *session.Manager, id int64) session.Step {
	t.Helper()
	s, found, err := m.Store().Get(context.Background(), id)
	require.NoError(t, err)
	if !found {
		return session.StepNone
	}
	return s.Step
}
