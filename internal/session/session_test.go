package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(time.Hour, WithClock(clock.Now))

	require.NoError(t, store.Put(ctx, 42, Session{Step: StepWritingName}))
	got, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepWritingName, got.Step)
	assert.Equal(t, clock.Now().Add(time.Hour), got.ExpiresAt)

	clock.Advance(time.Hour + time.Second)
	_, ok, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok, "expired session must look absent")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStorePutRefreshesDeadline(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore(10*time.Minute, WithClock(clock.Now))

	require.NoError(t, store.Put(ctx, 1, Session{Step: StepWritingAge}))
	clock.Advance(9 * time.Minute)
	s, ok, _ := store.Get(ctx, 1)
	require.True(t, ok)
	require.NoError(t, store.Put(ctx, 1, s))
	clock.Advance(9 * time.Minute)
	_, ok, _ = store.Get(ctx, 1)
	assert.True(t, ok)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore(time.Minute, WithClock(clock.Now))

	require.NoError(t, store.Put(ctx, 1, Session{Step: StepWritingName}))
	require.NoError(t, store.Put(ctx, 2, Session{Step: StepWritingName}))
	clock.Advance(2 * time.Minute)
	require.NoError(t, store.Put(ctx, 3, Session{Step: StepWritingName}))

	n, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, store.Len())
}

func TestManagerDecisions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	m := NewManager(store, nil)

	require.NoError(t, m.Update(ctx, 7, func(s *Session, found bool) (Decision, error) {
		assert.False(t, found)
		assert.Equal(t, StepNone, s.Step)
		s.Step = StepChoosingVacancy
		return Keep, nil
	}))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, m.Update(ctx, 7, func(s *Session, found bool) (Decision, error) {
		assert.True(t, found)
		s.Step = StepWritingName
		return Leave, nil
	}))
	got, _, _ := store.Get(ctx, 7)
	assert.Equal(t, StepChoosingVacancy, got.Step, "Leave must not write")

	boom := errors.New("boom")
	err := m.Update(ctx, 7, func(*Session, bool) (Decision, error) { return Drop, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len(), "decision applies even when the handler fails")

	m.Close()
	assert.ErrorIs(t, m.Update(ctx, 7, func(*Session, bool) (Decision, error) { return Keep, nil }), ErrClosed)
}

func TestManagerSerializesPerIdentity(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Hour), nil)

	const workers = 64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, 42, func(s *Session, _ bool) (Decision, error) {
				n := s.Draft.Age
				time.Sleep(100 * time.Microsecond)
				s.Draft.Age = n + 1
				return Keep, nil
			})
		}()
	}
	wg.Wait()

	s, ok, err := m.Store().Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, workers, s.Draft.Age, "lost update")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks, "identity locks must be released")
}

type countingObserver struct{ total int }

func (c *countingObserver) SessionsSwept(n int) { c.total += n }

func TestManagerSweepOnceNotifiesObserver(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore(time.Second, WithClock(clock.Now))
	obs := &countingObserver{}
	m := NewManager(store, obs)

	require.NoError(t, store.Put(ctx, 1, Session{Step: StepWritingName}))
	clock.Advance(2 * time.Second)
	m.sweepOnce(ctx)
	assert.Equal(t, 1, obs.total)
}

func TestStepText(t *testing.T) {
	raw, err := json.Marshal(Session{Step: StepUploadingCV})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"step":"uploading_cv"`)

	var s Session
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, StepUploadingCV, s.Step)

	assert.Error(t, json.Unmarshal([]byte(`{"step":"flying"}`), &s))
	assert.Equal(t, FlowHR, StepUploadingCV.Flow())
	assert.Equal(t, FlowSupport, StepSupportPhone.Flow())
	assert.Equal(t, FlowCourses, StepCourseChoice.Flow())
	assert.Equal(t, "", StepNone.Flow())
}
