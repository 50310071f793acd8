package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/geeksandijan/hrbot/core/logger"
)

// Decision tells Manager.Update what to do with the session after a handler ran.
type Decision uint8

const (
	// Leave performs no write.
	Leave Decision = iota
	// Keep stores the session and refreshes its deadline.
	Keep
	// Drop deletes the session.
	Drop
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Drop:
		return "drop"
	default:
		return "leave"
	}
}

// SweepObserver is notified after each sweep.
type SweepObserver interface {
	SessionsSwept(n int)
}

// Manager serializes read-modify-write cycles per identity on top of a Store.
type Manager struct {
	store    Store
	observer SweepObserver
	closed   atomic.Bool

	mu    sync.Mutex
	locks map[int64]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager wraps store. observer may be nil.
func NewManager(store Store, observer SweepObserver) *Manager {
	return &Manager{
		store:    store,
		observer: observer,
		locks:    make(map[int64]*identityLock),
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store { return m.store }

func (m *Manager) acquire(id int64) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &identityLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Update loads the session for id, runs fn and applies the returned decision,
// all while holding the identity lock. A missing session is passed as a zero
// value with found=false. The decision is applied even when fn fails.
func (m *Manager) Update(ctx context.Context, id int64, fn func(s *Session, found bool) (Decision, error)) error {
	if m.closed.Load() {
		return ErrClosed
	}
	release := m.acquire(id)
	defer release()

	s, found, err := m.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	decision, fnErr := fn(&s, found)

	var storeErr error
	switch decision {
	case Keep:
		storeErr = m.store.Put(ctx, id, s)
	case Drop:
		if found {
			storeErr = m.store.Delete(ctx, id)
		}
	}
	if storeErr != nil {
		storeErr = fmt.Errorf("%s session: %w", decision, storeErr)
	}
	return errors.Join(fnErr, storeErr)
}

// Reset removes the session for id under the identity lock.
func (m *Manager) Reset(ctx context.Context, id int64) error {
	return m.Update(ctx, id, func(*Session, bool) (Decision, error) {
		return Drop, nil
	})
}

// Close rejects further updates. In-flight updates finish normally.
func (m *Manager) Close() { m.closed.Store(true) }

// RunSweeper calls Store.Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.sweepOnce(ctx)
		}
	}
}

func (m *Manager) sweepOnce(ctx context.Context) {
	start := time.Now()
	n, err := m.store.Sweep(ctx)
	if err != nil {
		logger.Warn(ctx, "session", "sweep", slog.String("status", "fail"), logger.Err(err))
		return
	}
	if m.observer != nil && n > 0 {
		m.observer.SessionsSwept(n)
	}
	if n > 0 {
		logger.Debug(ctx, "session", "sweep",
			slog.String("status", "ok"),
			slog.Int("swept", n),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}
