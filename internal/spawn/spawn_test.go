package spawn

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/logging"
)

func TestExecutor_RunPendingInOrder(t *testing.T) {
	e := NewExecutor(logging.Discard())

	var order []int
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Post(func() { order = append(order, i) }))
	}
	assert.Equal(t, 3, e.RunPending())
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 0, e.RunPending())
}

func TestExecutor_NestedPostRunsInSameDrain(t *testing.T) {
	e := NewExecutor(logging.Discard())

	ran := false
	require.NoError(t, e.Post(func() {
		_ = e.Post(func() { ran = true })
	}))
	assert.Equal(t, 2, e.RunPending())
	assert.True(t, ran)
}

func TestExecutor_PanicIsContained(t *testing.T) {
	e := NewExecutor(logging.Discard())

	after := false
	require.NoError(t, e.Post(func() { panic("boom") }))
	require.NoError(t, e.Post(func() { after = true }))

	assert.Equal(t, 2, e.RunPending())
	assert.True(t, after)
	assert.Equal(t, uint64(1), e.Executed())
}

func TestExecutor_Closed(t *testing.T) {
	e := NewExecutor(logging.Discard())
	e.Close()
	assert.ErrorIs(t, e.Post(func() {}), ErrExecutorClosed)
}

func TestExecutor_Run(t *testing.T) {
	e := NewExecutor(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Post(func() { count.Add(1) }))
	}
	assert.Eventually(t, func() bool { return count.Load() == 5 }, time.Second, time.Millisecond)

	e.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("executor did not stop after Close")
	}
}

func TestScheduler_FailureIsIsolated(t *testing.T) {
	s := NewScheduler(context.Background(), logging.Discard())

	var ok atomic.Bool
	_, err := s.Spawn("fails", func(context.Context) error { return errors.New("nope") })
	require.NoError(t, err)
	_, err = s.Spawn("panics", func(context.Context) error { panic("boom") })
	require.NoError(t, err)
	_, err = s.Spawn("succeeds", func(context.Context) error {
		ok.Store(true)
		return nil
	})
	require.NoError(t, err)

	s.Wait()
	assert.True(t, ok.Load())
	assert.Equal(t, uint64(2), s.Failed())
	assert.Empty(t, s.Active())
}

func TestScheduler_ShutdownCancelsTasks(t *testing.T) {
	s := NewScheduler(context.Background(), logging.Discard(), WithLimit(4))

	started := make(chan struct{})
	id, err := s.Spawn("waits", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	require.NoError(t, err)
	<-started

	assert.Equal(t, map[string]bool{"waits": true}, names(s.Active()))
	assert.NotEqual(t, [16]byte{}, [16]byte(id))

	s.Shutdown()
	assert.Empty(t, s.Active())

	_, err = s.Spawn("late", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}

func TestScheduler_TaskPostsBackToExecutor(t *testing.T) {
	s := NewScheduler(context.Background(), logging.Discard())
	e := NewExecutor(logging.Discard())

	var result string
	_, err := s.Spawn("overlay", func(context.Context) error {
		return e.Post(func() { result = "cancelled" })
	})
	require.NoError(t, err)
	s.Wait()

	assert.Empty(t, result)
	e.RunPending()
	assert.Equal(t, "cancelled", result)
}

func names[K comparable](m map[K]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for _, v := range m {
		out[v] = true
	}
	return out
}
