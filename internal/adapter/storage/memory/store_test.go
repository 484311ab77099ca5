package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

func TestWithinTx_RollbackRestoresState(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := New()
	store.PutTank(domain.Tank{ID: "tank-1", CurrentLevel: decimal.NewFromInt(100), Capacity: decimal.NewFromInt(1000), Active: true})

	// Act
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		tank, err := store.Tanks().FindByIDForUpdate(ctx, "tank-1")
		if err != nil {
			return err
		}
		tank.CurrentLevel = decimal.NewFromInt(50)
		if err := store.Tanks().UpdateLevel(ctx, tank); err != nil {
			return err
		}
		return errors.New("abort")
	})

	// Assert
	if err == nil {
		t.Fatal("expected the callback error")
	}
	tank, _ := store.Tanks().FindByID(ctx, "tank-1")
	if !tank.CurrentLevel.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected level restored to 100, got %s", tank.CurrentLevel)
	}
}

func TestWithinTx_Nested(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return store.WithinTx(ctx, func(ctx context.Context) error {
			return store.CashRegisters().Create(ctx, &domain.CashRegister{ID: "r1", ShiftID: "s1", ClosedAt: time.Now()})
		})
	})

	if err != nil {
		t.Fatalf("nested transaction must join the outer one, got %v", err)
	}
	if store.Registers() != 1 {
		t.Errorf("expected 1 register, got %d", store.Registers())
	}
}

func TestFindByIDForUpdate_RequiresTx(t *testing.T) {
	store := New()
	store.PutTank(domain.Tank{ID: "tank-1"})

	if _, err := store.Tanks().FindByIDForUpdate(context.Background(), "tank-1"); err == nil {
		t.Fatal("expected an error outside a transaction")
	}
}

func TestTankCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := New()
	store.PutTank(domain.Tank{ID: "tank-1", Version: 4, CurrentLevel: decimal.NewFromInt(10), Capacity: decimal.NewFromInt(100)})

	swapped, err := store.Tanks().CompareAndSwap(ctx, &domain.Tank{ID: "tank-1", Version: 5, Capacity: decimal.NewFromInt(100)}, 3)
	if err != nil || swapped {
		t.Fatalf("stale version must not swap, got swapped=%v err=%v", swapped, err)
	}

	swapped, err = store.Tanks().CompareAndSwap(ctx, &domain.Tank{ID: "tank-1", Version: 5, CurrentLevel: decimal.NewFromInt(20), Capacity: decimal.NewFromInt(100)}, 4)
	if err != nil || !swapped {
		t.Fatalf("expected swap, got swapped=%v err=%v", swapped, err)
	}
	tank, _ := store.Tanks().FindByID(ctx, "tank-1")
	if tank.Version != 5 || !tank.CurrentLevel.Equal(decimal.NewFromInt(20)) {
		t.Errorf("unexpected tank %+v", tank)
	}
}

func TestAlertCreate_OneActivePerEntity(t *testing.T) {
	ctx := context.Background()
	store := New()
	tankID := "tank-1"
	alert := func(id string) *domain.Alert {
		return &domain.Alert{ID: id, StationID: "st", Type: domain.AlertTypeLowStock, Status: domain.AlertStatusActive, RelatedEntityID: &tankID}
	}

	if err := store.Alerts().Create(ctx, alert("a1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := store.Alerts().Create(ctx, alert("a2")); !errors.Is(err, domain.ErrDuplicateActiveAlert) {
		t.Fatalf("expected ErrDuplicateActiveAlert, got %v", err)
	}

	n, err := store.Alerts().ResolveActiveByEntity(ctx, "st", domain.AlertTypeLowStock, tankID, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 resolved, got n=%d err=%v", n, err)
	}
	if err := store.Alerts().Create(ctx, alert("a3")); err != nil {
		t.Fatalf("create after resolve: %v", err)
	}
}

func TestAlertList_NewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, id := range []string{"a1", "a2", "a3"} {
		_ = store.Alerts().Create(ctx, &domain.Alert{ID: id, StationID: "st", Type: domain.AlertTypeMaintenanceDue, Status: domain.AlertStatusIgnored})
	}

	got, err := store.Alerts().List(ctx, domain.AlertFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a2" || got[1].ID != "a1" {
		t.Errorf("unexpected page %+v", got)
	}
}
