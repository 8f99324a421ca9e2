package store

import (
	"context"
	"testing"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseGate_RejectsBeyondWaitingRoom(t *testing.T) {
	g := NewLeaseGate(2, 0, time.Second)
	ctx := context.Background()

	r1, err := g.Acquire(ctx)
	require.NoError(t, err)
	r2, err := g.Acquire(ctx)
	require.NoError(t, err)

	_, err = g.Acquire(ctx)
	assert.ErrorIs(t, err, core.ErrPoolSaturated)

	r1()
	r3, err := g.Acquire(ctx)
	require.NoError(t, err)
	r2()
	r3()
}

func TestLeaseGate_WaitTimesOut(t *testing.T) {
	g := NewLeaseGate(1, 1, 20*time.Millisecond)
	ctx := context.Background()

	release, err := g.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = g.Acquire(ctx)
	assert.ErrorIs(t, err, core.ErrPoolSaturated)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	// The timed-out waiter gave its waiting slot back.
	_, err = g.Acquire(ctx)
	assert.ErrorIs(t, err, core.ErrPoolSaturated)
}

func TestLeaseGate_WaiterProceedsAfterRelease(t *testing.T) {
	g := NewLeaseGate(1, 1, 5*time.Second)
	ctx := context.Background()

	release, err := g.Acquire(ctx)
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		r, err := g.Acquire(ctx)
		if err == nil {
			r()
		}
		acquired <- err
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the lease")
	}
}

func TestLeaseGate_CallerCancellation(t *testing.T) {
	g := NewLeaseGate(1, 1, 0)

	release, err := g.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = g.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, core.ErrPoolSaturated)
}

func TestLeaseGate_ReleaseIsIdempotent(t *testing.T) {
	g := NewLeaseGate(1, 0, time.Second)
	ctx := context.Background()

	release, err := g.Acquire(ctx)
	require.NoError(t, err)
	release()
	release()

	r1, err := g.Acquire(ctx)
	require.NoError(t, err)
	defer r1()

	_, err = g.Acquire(ctx)
	assert.ErrorIs(t, err, core.ErrPoolSaturated)
}
