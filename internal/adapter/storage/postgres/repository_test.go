package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// startPostgres runs a migrated throwaway database. Tests using it are
// skipped under -short or when no Docker daemon is reachable.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("sigec_test"),
		tcpostgres.WithUsername("sigec"),
		tcpostgres.WithPassword("sigec_test"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}

	db, err := NewConnection(url, Options{MaxOpenConns: 5}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { Close(db) })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	// Migrations are idempotent.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestRepositories(t *testing.T) {
	db := startPostgres(t)
	log := zap.NewNop()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tanks := NewTankRepository(db, log)
	tx := NewTxManager(db, log)

	tank := &domain.Tank{
		ID: "tank-1", StationID: "station-1", Name: "Gasoil",
		CurrentLevel: decimal.NewFromInt(5000), Capacity: decimal.NewFromInt(10000),
		LowThreshold: decimal.NewFromInt(1000), Active: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Create(tank).Error; err != nil {
		t.Fatalf("seed tank: %v", err)
	}

	t.Run("RowLockRequiresTransaction", func(t *testing.T) {
		if _, err := tanks.FindByIDForUpdate(ctx, "tank-1"); !errors.Is(err, errLockOutsideTx) {
			t.Errorf("expected errLockOutsideTx, got %v", err)
		}
	})

	t.Run("UpdateLevelInsideTransaction", func(t *testing.T) {
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			locked, err := tanks.FindByIDForUpdate(ctx, "tank-1")
			if err != nil || locked == nil {
				t.Fatalf("lock tank: %v", err)
			}
			locked.CurrentLevel = locked.CurrentLevel.Add(decimal.NewFromInt(1500))
			locked.Version++
			return tanks.UpdateLevel(ctx, locked)
		})
		if err != nil {
			t.Fatalf("transaction: %v", err)
		}

		got, _ := tanks.FindByID(ctx, "tank-1")
		if !got.CurrentLevel.Equal(decimal.NewFromInt(6500)) || got.Version != 1 {
			t.Errorf("expected level 6500 at version 1, got %s at %d", got.CurrentLevel, got.Version)
		}
	})

	t.Run("RollbackDiscardsWrites", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			locked, _ := tanks.FindByIDForUpdate(ctx, "tank-1")
			locked.CurrentLevel = decimal.Zero
			locked.Version++
			if err := tanks.UpdateLevel(ctx, locked); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		got, _ := tanks.FindByID(ctx, "tank-1")
		if !got.CurrentLevel.Equal(decimal.NewFromInt(6500)) {
			t.Errorf("expected rollback to keep 6500, got %s", got.CurrentLevel)
		}
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		current, _ := tanks.FindByID(ctx, "tank-1")
		next := *current
		next.CurrentLevel = decimal.NewFromInt(7000)
		next.Version = current.Version + 1

		ok, err := tanks.CompareAndSwap(ctx, &next, current.Version)
		if err != nil || !ok {
			t.Fatalf("expected swap, got ok=%v err=%v", ok, err)
		}
		ok, err = tanks.CompareAndSwap(ctx, &next, current.Version)
		if err != nil || ok {
			t.Errorf("expected stale version to be refused, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("LevelCheckConstraint", func(t *testing.T) {
		current, _ := tanks.FindByID(ctx, "tank-1")
		over := *current
		over.CurrentLevel = decimal.NewFromInt(20000)
		over.Version = current.Version + 1

		if _, err := tanks.CompareAndSwap(ctx, &over, current.Version); err == nil {
			t.Error("expected the schema to reject a level above capacity")
		}
	})

	t.Run("OneActiveAlertPerCondition", func(t *testing.T) {
		alerts := NewAlertRepository(db, log)
		newAlert := func(id string) *domain.Alert {
			return &domain.Alert{
				ID: id, StationID: "station-1", Type: domain.AlertTypeLowStock,
				Priority: domain.AlertPriorityHigh, Status: domain.AlertStatusActive,
				Title: "Low stock", RelatedEntityType: strPtr(domain.EntityTank),
				RelatedEntityID: strPtr("tank-1"), TriggeredAt: now,
			}
		}

		if err := alerts.Create(ctx, newAlert("alert-1")); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := alerts.Create(ctx, newAlert("alert-2")); !errors.Is(err, domain.ErrDuplicateActiveAlert) {
			t.Fatalf("expected ErrDuplicateActiveAlert, got %v", err)
		}
		if exists, _ := alerts.ExistsActive(ctx, "station-1", domain.AlertTypeLowStock, strPtr("tank-1")); !exists {
			t.Error("expected an active alert")
		}

		n, err := alerts.ResolveActiveByEntity(ctx, "station-1", domain.AlertTypeLowStock, "tank-1", now)
		if err != nil || n != 1 {
			t.Fatalf("expected 1 resolved, got %d (%v)", n, err)
		}
		if err := alerts.Create(ctx, newAlert("alert-3")); err != nil {
			t.Errorf("expected a new alert after resolution, got %v", err)
		}

		count, _ := alerts.CountActive(ctx, "station-1")
		if count != 1 {
			t.Errorf("expected 1 active alert, got %d", count)
		}
		listed, err := alerts.List(ctx, domain.AlertFilter{StationID: "station-1"})
		if err != nil || len(listed) != 2 {
			t.Errorf("expected 2 alerts listed, got %d (%v)", len(listed), err)
		}
	})

	t.Run("AlertTransitionIsConditional", func(t *testing.T) {
		alerts := NewAlertRepository(db, log)
		tankID := "tank-9"
		alert := &domain.Alert{
			ID: "alert-race", StationID: "station-1", Type: domain.AlertTypeLowStock,
			Priority: domain.AlertPriorityHigh, Status: domain.AlertStatusActive,
			Title: "Low stock", RelatedEntityID: &tankID, TriggeredAt: now,
		}
		if err := alerts.Create(ctx, alert); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := alerts.ResolveActiveByEntity(ctx, "station-1", domain.AlertTypeLowStock, tankID, now); err != nil {
			t.Fatalf("auto-resolve: %v", err)
		}

		ack := *alert
		ack.Status = domain.AlertStatusAcknowledged
		ack.AcknowledgedAt = &now
		ack.AcknowledgedBy = strPtr("manager-1")
		ok, err := alerts.Transition(ctx, &ack, domain.AlertStatusActive)
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		if ok {
			t.Error("expected the stale transition to be refused")
		}

		got, _ := alerts.FindByID(ctx, "alert-race")
		if got.Status != domain.AlertStatusResolved || got.ResolvedAt == nil || got.AcknowledgedBy != nil {
			t.Errorf("resolved alert was modified: %+v", got)
		}
	})

	t.Run("ShiftCloseWaitsForOpenSale", func(t *testing.T) {
		shifts := NewShiftRepository(db, log)
		shift := &domain.Shift{
			ID: "shift-lock", StationID: "station-1", AttendantID: "att-1", NozzleID: "nozzle-1",
			Status: domain.ShiftStatusOpen, StartedAt: now, MeterIndexStart: decimal.NewFromInt(100),
		}
		if err := db.Create(shift).Error; err != nil {
			t.Fatalf("seed shift: %v", err)
		}
		if _, err := shifts.FindByIDForShare(ctx, "shift-lock"); !errors.Is(err, errLockOutsideTx) {
			t.Fatalf("expected errLockOutsideTx, got %v", err)
		}

		locked := make(chan struct{})
		release := make(chan struct{})
		saleDone := make(chan error, 1)
		go func() {
			saleDone <- tx.WithinTx(ctx, func(ctx context.Context) error {
				sh, err := shifts.FindByIDForShare(ctx, "shift-lock")
				if err != nil {
					return err
				}
				if sh.Status != domain.ShiftStatusOpen {
					return errors.New("shift not open")
				}
				close(locked)
				<-release
				return nil
			})
		}()
		<-locked

		closed := make(chan error, 1)
		go func() {
			closed <- tx.WithinTx(ctx, func(ctx context.Context) error {
				sh, err := shifts.FindByIDForUpdate(ctx, "shift-lock")
				if err != nil {
					return err
				}
				sh.Status = domain.ShiftStatusClosed
				sh.ClosedAt = &now
				return shifts.Update(ctx, sh)
			})
		}()

		select {
		case err := <-closed:
			t.Fatalf("close finished while a sale held the shift: %v", err)
		case <-time.After(300 * time.Millisecond):
		}

		close(release)
		if err := <-saleDone; err != nil {
			t.Fatalf("sale transaction: %v", err)
		}
		select {
		case err := <-closed:
			if err != nil {
				t.Fatalf("close transaction: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("close did not proceed after the sale committed")
		}

		got, _ := shifts.FindByID(ctx, "shift-lock")
		if got.Status != domain.ShiftStatusClosed {
			t.Errorf("expected CLOSED, got %s", got.Status)
		}
	})

	t.Run("OneRegisterPerShift", func(t *testing.T) {
		registers := NewCashRegisterRepository(db, log)
		register := func(id string) *domain.CashRegister {
			return &domain.CashRegister{
				ID: id, ShiftID: "shift-1", StationID: "station-1",
				ExpectedTotal: decimal.NewFromInt(100000), ActualTotal: decimal.NewFromInt(95000),
				Variance: decimal.NewFromInt(-5000), ClosedAt: now,
				Details: []domain.PaymentDetail{{
					ID: id + "-cash", PaymentMethodID: "pm-cash",
					ExpectedAmount: decimal.NewFromInt(100000), ActualAmount: decimal.NewFromInt(95000),
					Variance: decimal.NewFromInt(-5000),
				}},
			}
		}

		if err := registers.Create(ctx, register("register-1")); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := registers.Create(ctx, register("register-2")); !errors.Is(err, domain.ErrAlreadyReconciled) {
			t.Fatalf("expected ErrAlreadyReconciled, got %v", err)
		}

		got, err := registers.FindByShiftID(ctx, "shift-1")
		if err != nil || got == nil {
			t.Fatalf("find: %v", err)
		}
		if len(got.Details) != 1 || !got.Details[0].Variance.Equal(decimal.NewFromInt(-5000)) {
			t.Errorf("expected the cash line with -5000, got %+v", got.Details)
		}

		missing, err := registers.FindByShiftID(ctx, "shift-unknown")
		if err != nil || missing != nil {
			t.Errorf("expected (nil, nil) for an unknown shift, got %v, %v", missing, err)
		}
	})
}
