package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"golang.org/x/sync/semaphore"
)

// LeaseGate bounds concurrent connection leases and the number of callers
// allowed to wait for one. Callers beyond the waiting room fail immediately
// with core.ErrPoolSaturated; admitted callers wait at most acquireTimeout.
type LeaseGate struct {
	admission      *semaphore.Weighted
	leases         *semaphore.Weighted
	acquireTimeout time.Duration
}

// NewLeaseGate creates a gate for maxLeases concurrent leases plus maxWaiting
// queued callers. acquireTimeout <= 0 waits until the caller's context ends.
func NewLeaseGate(maxLeases, maxWaiting int, acquireTimeout time.Duration) *LeaseGate {
	if maxLeases <= 0 {
		maxLeases = 1
	}
	if maxWaiting < 0 {
		maxWaiting = 0
	}
	return &LeaseGate{
		admission:      semaphore.NewWeighted(int64(maxLeases + maxWaiting)),
		leases:         semaphore.NewWeighted(int64(maxLeases)),
		acquireTimeout: acquireTimeout,
	}
}

// Acquire takes a lease. The returned release func is safe to call more than once.
func (g *LeaseGate) Acquire(ctx context.Context) (func(), error) {
	if !g.admission.TryAcquire(1) {
		return nil, core.ErrPoolSaturated
	}

	waitCtx := ctx
	if g.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.acquireTimeout)
		defer cancel()
	}

	if err := g.leases.Acquire(waitCtx, 1); err != nil {
		g.admission.Release(1)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: no connection within %s", core.ErrPoolSaturated, g.acquireTimeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.leases.Release(1)
			g.admission.Release(1)
		})
	}, nil
}
