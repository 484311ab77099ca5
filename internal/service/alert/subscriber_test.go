package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/memory"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/mocks"
)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestSubscriber_LevelChangedChecksLowStock(t *testing.T) {
	// Arrange
	store := memory.New()
	store.PutTank(*tank("tank-1", "900"))

	var checked *domain.Tank
	engine := &mocks.MockAlertEngine{
		CheckLowStockFunc: func(ctx context.Context, tank *domain.Tank) (bool, error) {
			checked = tank
			return true, nil
		},
	}
	mq := mocks.NewMockMessageQueue()
	sub := NewSubscriber(engine, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger())
	if err := sub.Register(mq); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Act
	err := mq.Deliver(queue.SubjectLevelChanged, mustJSON(t, queue.LevelChangedEvent{TankID: "tank-1", StationID: "station-1"}))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if checked == nil || checked.ID != "tank-1" {
		t.Fatalf("expected tank-1 to be checked with the stored level, got %+v", checked)
	}
	if !checked.CurrentLevel.Equal(d("900")) {
		t.Errorf("expected level 900, got %s", checked.CurrentLevel)
	}
}

func TestSubscriber_UnknownTankIgnored(t *testing.T) {
	engine := &mocks.MockAlertEngine{
		CheckLowStockFunc: func(ctx context.Context, tank *domain.Tank) (bool, error) {
			t.Fatal("engine must not be called")
			return false, nil
		},
	}
	store := memory.New()
	sub := NewSubscriber(engine, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger())

	if err := sub.HandleLevelChanged(mustJSON(t, queue.LevelChangedEvent{TankID: "ghost"})); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestSubscriber_MalformedPayload(t *testing.T) {
	store := memory.New()
	sub := NewSubscriber(&mocks.MockAlertEngine{}, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger())

	if err := sub.HandleLevelChanged([]byte("{not json")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestSubscriber_RegisterClosedRunsBothChecks(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.New()
	end := d("1000")
	closed := time.Now()
	store.PutShift(domain.Shift{ID: "shift-1", StationID: "station-1", Status: domain.ShiftStatusClosed, MeterIndexEnd: &end, ClosedAt: &closed})
	reg := &domain.CashRegister{ID: "reg-1", ShiftID: "shift-1", StationID: "station-1", ClosedAt: closed}
	if err := store.CashRegisters().Create(ctx, reg); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	var cashChecked, indexChecked bool
	engine := &mocks.MockAlertEngine{
		CheckCashVarianceFunc: func(ctx context.Context, register *domain.CashRegister) (bool, error) {
			cashChecked = register.ID == "reg-1"
			return false, errors.New("transient")
		},
		CheckIndexVarianceFunc: func(ctx context.Context, shift *domain.Shift) (bool, error) {
			indexChecked = shift.ID == "shift-1"
			return false, nil
		},
	}
	sub := NewSubscriber(engine, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger())

	// Act
	err := sub.HandleRegisterClosed(mustJSON(t, queue.RegisterClosedEvent{RegisterID: "reg-1", ShiftID: "shift-1"}))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cashChecked {
		t.Error("expected cash variance check")
	}
	if !indexChecked {
		t.Error("a failing cash check must not skip the index check")
	}
}

func TestSubscriber_NotifierFiltersByPriority(t *testing.T) {
	// Arrange
	notifier := &mocks.MockAlertNotifier{}
	store := memory.New()
	mq := mocks.NewMockMessageQueue()
	sub := NewSubscriber(&mocks.MockAlertEngine{}, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger()).
		WithNotifier(notifier, domain.AlertPriorityHigh)
	if err := sub.Register(mq); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Act
	for _, p := range []domain.AlertPriority{domain.AlertPriorityLow, domain.AlertPriorityHigh, domain.AlertPriorityCritical} {
		ev := queue.AlertEvent{Alert: domain.Alert{ID: string(p), Priority: p}}
		if err := mq.Deliver(queue.SubjectAlertCreated, mustJSON(t, ev)); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}

	// Assert
	if len(notifier.Notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.Notified))
	}
	if notifier.Notified[0].Priority != domain.AlertPriorityHigh {
		t.Errorf("expected HIGH first, got %s", notifier.Notified[0].Priority)
	}
}

func TestSubscriber_NoNotifierNoAlertSubscription(t *testing.T) {
	store := memory.New()
	mq := mocks.NewMockMessageQueue()
	sub := NewSubscriber(&mocks.MockAlertEngine{}, store.Tanks(), store.Shifts(), store.CashRegisters(), newTestLogger())
	_ = sub.Register(mq)

	if len(mq.Subscribers[queue.SubjectAlertCreated]) != 0 {
		t.Error("expected no alerts.created subscription without a notifier")
	}
	if len(mq.Subscribers[queue.SubjectLevelChanged]) != 1 {
		t.Error("expected a level_changed subscription")
	}
}
