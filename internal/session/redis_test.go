package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	in := Session{Step: StepChoosingSubject, Draft: Draft{Vacancy: "Mentor", Name: "Ali Valiyev", Age: 20}}
	require.NoError(t, store.Put(ctx, 42, in))
	assert.True(t, mr.Exists("hrbot:session:42"))
	assert.Equal(t, time.Hour, mr.TTL("hrbot:session:42"))

	got, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Step, got.Step)
	assert.Equal(t, in.Draft, got.Draft)

	require.NoError(t, store.Delete(ctx, 42))
	_, ok, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Put(ctx, 1, Session{Step: StepWritingAge}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStoreDropsUndecodableValue(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set("hrbot:session:42", `{"step":"old_step"}`))

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("hrbot:session:42"))

	m := NewManager(store, nil)
	require.NoError(t, mr.Set("hrbot:session:42", "not json"))
	require.NoError(t, m.Update(ctx, 42, func(s *Session, found bool) (Decision, error) {
		assert.False(t, found)
		s.Step = StepChoosingVacancy
		return Keep, nil
	}))
	s, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepChoosingVacancy, s.Step)
}

func TestRedisStoreWithManager(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, time.Hour)
	m := NewManager(store, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Update(ctx, 9, func(s *Session, _ bool) (Decision, error) {
			s.Draft.Age++
			return Keep, nil
		}))
	}
	s, ok, err := store.Get(ctx, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, s.Draft.Age)
}
