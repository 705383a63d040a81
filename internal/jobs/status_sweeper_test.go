package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) AdvanceAll(context.Context) (int, error) {
	s.calls.Add(1)
	return 0, s.err
}

func TestStatusSweeperRunsImmediatelyAndStops(t *testing.T) {
	svc := &countingSweeper{}
	sweeper := NewStatusSweeper(svc, time.Hour, true)

	done := make(chan struct{})
	go func() {
		sweeper.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return svc.calls.Load() == 1
	}, time.Second, 10*time.Millisecond, "first sweep runs before the first tick")

	sweeper.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestStatusSweeperDisabledNeverSweeps(t *testing.T) {
	svc := &countingSweeper{}
	sweeper := NewStatusSweeper(svc, time.Hour, false)

	// A disabled sweeper returns straight away.
	sweeper.Start(context.Background())

	assert.Zero(t, svc.calls.Load())
}

func TestStatusSweeperStopsOnContextCancel(t *testing.T) {
	svc := &countingSweeper{err: errors.New("db gone")}
	sweeper := NewStatusSweeper(svc, time.Hour, true)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return svc.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

func TestNewStatusSweeperDefaultsInterval(t *testing.T) {
	sweeper := NewStatusSweeper(&countingSweeper{}, 0, true)

	assert.Equal(t, time.Minute, sweeper.interval)
}
