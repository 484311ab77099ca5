package shift

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/memory"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newMemoryService(store *memory.Store) ports.ShiftService {
	store.PutUser(domain.User{ID: "manager-1", Name: "Awa", Role: domain.UserRoleManager, Status: "Active"})
	return NewService(store, store.Shifts(), store.CashRegisters(), store.Users(), newTestLogger())
}

func openShift(store *memory.Store) {
	store.PutShift(domain.Shift{
		ID:              "shift-1",
		StationID:       "station-1",
		AttendantID:     "att-1",
		Status:          domain.ShiftStatusOpen,
		StartedAt:       time.Now().Add(-8 * time.Hour),
		MeterIndexStart: decimal.NewFromInt(12000),
	})
}

func TestClose_RecordsEndIndex(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.New()
	openShift(store)
	svc := newMemoryService(store)

	// Act
	shift, err := svc.Close(ctx, "shift-1", decimal.NewFromInt(13500))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if shift.Status != domain.ShiftStatusClosed || shift.ClosedAt == nil {
		t.Errorf("expected CLOSED with timestamp, got %+v", shift)
	}
	if !shift.MeterVolume().Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected meter volume 1500, got %s", shift.MeterVolume())
	}

	stored, _ := svc.Get(ctx, "shift-1")
	if stored.Status != domain.ShiftStatusClosed {
		t.Errorf("expected the stored shift to be CLOSED, got %s", stored.Status)
	}
}

func TestClose_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("end index below start", func(t *testing.T) {
		store := memory.New()
		openShift(store)
		svc := newMemoryService(store)

		_, err := svc.Close(ctx, "shift-1", decimal.NewFromInt(11999))
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("already closed", func(t *testing.T) {
		store := memory.New()
		openShift(store)
		svc := newMemoryService(store)
		_, _ = svc.Close(ctx, "shift-1", decimal.NewFromInt(12500))

		_, err := svc.Close(ctx, "shift-1", decimal.NewFromInt(12600))
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})

	t.Run("unknown shift", func(t *testing.T) {
		svc := newMemoryService(memory.New())

		_, err := svc.Close(ctx, "ghost", decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	closedStore := func(withRegister bool) *memory.Store {
		store := memory.New()
		openShift(store)
		svc := newMemoryService(store)
		if _, err := svc.Close(ctx, "shift-1", decimal.NewFromInt(12500)); err != nil {
			t.Fatalf("close: %v", err)
		}
		if withRegister {
			reg := &domain.CashRegister{ID: "reg-1", ShiftID: "shift-1", StationID: "station-1", ClosedAt: time.Now()}
			if err := store.CashRegisters().Create(ctx, reg); err != nil {
				t.Fatalf("seed register: %v", err)
			}
		}
		return store
	}

	t.Run("reconciled shift is validated", func(t *testing.T) {
		store := closedStore(true)
		svc := newMemoryService(store)

		shift, err := svc.Validate(ctx, "shift-1", "manager-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if shift.Status != domain.ShiftStatusValidated || shift.ValidatedBy == nil || *shift.ValidatedBy != "manager-1" {
			t.Errorf("unexpected shift %+v", shift)
		}
	})

	t.Run("register required", func(t *testing.T) {
		svc := newMemoryService(closedStore(false))

		_, err := svc.Validate(ctx, "shift-1", "manager-1")
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})

	t.Run("unknown validator", func(t *testing.T) {
		svc := newMemoryService(closedStore(true))

		_, err := svc.Validate(ctx, "shift-1", "ghost")
		if !errors.Is(err, domain.ErrInvalidActor) {
			t.Fatalf("expected ErrInvalidActor, got %v", err)
		}
	})

	t.Run("open shift", func(t *testing.T) {
		store := memory.New()
		openShift(store)
		svc := newMemoryService(store)

		_, err := svc.Validate(ctx, "shift-1", "manager-1")
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestClose_LocksShiftRow(t *testing.T) {
	// Arrange
	store := memory.New()
	openShift(store)
	var locked int
	shifts := &mocks.MockShiftRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Shift, error) {
			t.Error("close read the shift without a row lock")
			return store.Shifts().FindByID(ctx, id)
		},
		FindByIDForUpdateFunc: func(ctx context.Context, id string) (*domain.Shift, error) {
			locked++
			return store.Shifts().FindByIDForUpdate(ctx, id)
		},
		UpdateFunc: func(ctx context.Context, shift *domain.Shift) error {
			return store.Shifts().Update(ctx, shift)
		},
	}
	svc := NewService(store, shifts, store.CashRegisters(), store.Users(), newTestLogger())

	// Act
	_, err := svc.Close(context.Background(), "shift-1", decimal.NewFromInt(12500))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if locked != 1 {
		t.Errorf("expected one exclusive shift lock, got %d", locked)
	}
}
