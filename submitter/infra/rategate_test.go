package infra

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"document-gateway/submitter/domain"

	"github.com/stretchr/testify/require"
)

func usedOf(g *RateGate) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}

func mustGate(t *testing.T, limit int) *RateGate {
	t.Helper()
	g, err := NewRateGate(limit)
	require.NoError(t, err)
	return g
}

func TestRateGate_RejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := NewRateGate(limit)
		require.ErrorIs(t, err, domain.ErrInvalidConfig)
	}
}

func TestRateGate_AdmitsUpToLimitThenBlocks(t *testing.T) {
	g := mustGate(t, 3)
	ctx := context.TODO()
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Acquire(ctx))
	}

	cctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err := g.Acquire(cctx)
	require.ErrorIs(t, err, domain.ErrCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 3, usedOf(g))
}

func TestRateGate_ResetWakesWaiters(t *testing.T) {
	g := mustGate(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, g.Acquire(ctx))
	require.NoError(t, g.Acquire(ctx))

	admitted := make(chan struct{}, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Acquire(ctx) == nil {
				admitted <- struct{}{}
			}
		}()
	}

	select {
	case <-admitted:
		t.Fatalf("limit exceed")
	case <-time.After(30 * time.Millisecond):
	}

	g.Reset()
	for i := 0; i < 2; i++ {
		select {
		case <-admitted:
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("waiter %d not admitted after reset", i)
		}
	}
	select {
	case <-admitted:
		t.Fatalf("limit exceed after reset")
	case <-time.After(30 * time.Millisecond):
	}
	require.Equal(t, 2, usedOf(g))

	g.Reset()
	select {
	case <-admitted:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("last waiter not admitted after second reset")
	}
	wg.Wait()
	require.Equal(t, 1, usedOf(g))
}

func TestRateGate_CancelDoesNotCorruptOrStarve(t *testing.T) {
	g := mustGate(t, 1)
	require.NoError(t, g.Acquire(context.TODO()))

	actx, acancel := context.WithCancel(context.Background())
	aerr := make(chan error, 1)
	go func() { aerr <- g.Acquire(actx) }()

	berr := make(chan error, 1)
	go func() { berr <- g.Acquire(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	acancel()
	select {
	case err := <-aerr:
		require.ErrorIs(t, err, domain.ErrCancelled)
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("cancelled waiter did not return")
	}
	require.Equal(t, 1, usedOf(g))

	select {
	case <-berr:
		t.Fatalf("limit exceed")
	case <-time.After(20 * time.Millisecond):
	}

	g.Reset()
	select {
	case err := <-berr:
		require.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("remaining waiter starved")
	}
	require.Equal(t, 1, usedOf(g))
}

func TestRateGate_ConcurrentExactlyLimit(t *testing.T) {
	const m, l = 20, 7
	g := mustGate(t, l)

	var ok, cancelled int32
	var wg sync.WaitGroup
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			err := g.Acquire(ctx)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrCancelled):
				atomic.AddInt32(&cancelled, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(l), ok)
	require.Equal(t, int32(m-l), cancelled)
	require.Equal(t, l, usedOf(g))
}

func TestRateGate_ResetIsIdempotent(t *testing.T) {
	g := mustGate(t, 2)
	require.NoError(t, g.Acquire(context.TODO()))

	g.Reset()
	require.Equal(t, 0, usedOf(g))
	g.Reset()
	require.Equal(t, 0, usedOf(g))
}

func TestRateGate_CancelledContextFailsFast(t *testing.T) {
	g := mustGate(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, g.Acquire(ctx), domain.ErrCancelled)
	require.Equal(t, 0, usedOf(g))
}

func TestRateGate_CloseReleasesWaiters(t *testing.T) {
	g := mustGate(t, 1)
	require.NoError(t, g.Acquire(context.TODO()))

	errc := make(chan error, 1)
	go func() { errc <- g.Acquire(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	g.Close()
	g.Close()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, domain.ErrGateClosed)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("waiter not released on close")
	}
	require.ErrorIs(t, g.Acquire(context.TODO()), domain.ErrGateClosed)
}
