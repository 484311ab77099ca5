package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/ports"
)

const sweepLockKey = "alerts:sweep"

// Sweeper runs RunAllChecks on a fixed interval. Replicas share a lock so a
// tick is skipped while another replica is sweeping.
type Sweeper struct {
	engine   ports.AlertEngine
	locker   ports.Locker
	interval time.Duration
	lockTTL  time.Duration
	log      *zap.Logger
}

func NewSweeper(engine ports.AlertEngine, locker ports.Locker, interval, lockTTL time.Duration, log *zap.Logger) *Sweeper {
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &Sweeper{
		engine:   engine,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Alert sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Alert sweeper stopped")
			return
		case <-ticker.C:
			if _, _, err := s.SweepOnce(ctx); err != nil {
				s.log.Error("Alert sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce runs one sweep if the lock can be taken. ran is false when
// another holder owns the lock.
func (s *Sweeper) SweepOnce(ctx context.Context) (res *ports.RunResult, ran bool, err error) {
	unlock, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.log.Debug("Alert sweep skipped, lock held elsewhere")
		return nil, false, nil
	}
	defer func() {
		if uerr := unlock(context.Background()); uerr != nil {
			s.log.Warn("Failed to release sweep lock", zap.Error(uerr))
		}
	}()

	res, err = s.engine.RunAllChecks(ctx)
	return res, true, err
}
