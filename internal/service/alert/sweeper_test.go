package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

func TestSweepOnce_RunsUnderLock(t *testing.T) {
	// Arrange
	var lockedKey string
	locker := &mocks.MockLocker{}
	locker.TryLockFunc = func(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
		lockedKey = key
		return func(context.Context) error {
			locker.Released++
			return nil
		}, true, nil
	}
	engine := &mocks.MockAlertEngine{
		RunAllChecksFunc: func(ctx context.Context) (*ports.RunResult, error) {
			return &ports.RunResult{ChecksRun: 7, AlertsCreated: 2}, nil
		},
	}
	sweeper := NewSweeper(engine, locker, time.Minute, 0, newTestLogger())

	// Act
	res, ran, err := sweeper.SweepOnce(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ran {
		t.Fatal("expected the sweep to run")
	}
	if res.AlertsCreated != 2 {
		t.Errorf("expected 2 alerts created, got %d", res.AlertsCreated)
	}
	if lockedKey != sweepLockKey {
		t.Errorf("expected lock key %q, got %q", sweepLockKey, lockedKey)
	}
	if locker.Released != 1 {
		t.Errorf("expected lock released once, got %d", locker.Released)
	}
}

func TestSweepOnce_SkipsWhenLockHeld(t *testing.T) {
	locker := &mocks.MockLocker{
		TryLockFunc: func(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
			return nil, false, nil
		},
	}
	engine := &mocks.MockAlertEngine{
		RunAllChecksFunc: func(ctx context.Context) (*ports.RunResult, error) {
			t.Fatal("engine must not run without the lock")
			return nil, nil
		},
	}
	sweeper := NewSweeper(engine, locker, time.Minute, time.Minute, newTestLogger())

	res, ran, err := sweeper.SweepOnce(context.Background())

	if err != nil || ran || res != nil {
		t.Fatalf("expected a silent skip, got res=%v ran=%v err=%v", res, ran, err)
	}
}

func TestSweepOnce_LockError(t *testing.T) {
	locker := &mocks.MockLocker{
		TryLockFunc: func(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
			return nil, false, errors.New("redis unavailable")
		},
	}
	sweeper := NewSweeper(&mocks.MockAlertEngine{}, locker, time.Minute, time.Minute, newTestLogger())

	if _, _, err := sweeper.SweepOnce(context.Background()); err == nil {
		t.Fatal("expected the lock error to surface")
	}
}

func TestSweeperRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 8)
	engine := &mocks.MockAlertEngine{
		RunAllChecksFunc: func(ctx context.Context) (*ports.RunResult, error) {
			select {
			case runs <- struct{}{}:
			default:
			}
			return &ports.RunResult{}, nil
		},
	}
	sweeper := NewSweeper(engine, &mocks.MockLocker{}, 10*time.Millisecond, time.Second, newTestLogger())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ticked")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
