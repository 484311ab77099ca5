package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/memory"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

var sweepNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type engineFixture struct {
	store  *memory.Store
	alerts *Service
	engine *Engine
}

func newEngineFixture() *engineFixture {
	store := memory.New()
	alerts := newAlertService(store, nil, nil)
	alerts.now = func() time.Time { return sweepNow }

	engine := NewEngine(EngineDeps{
		Alerts:      alerts,
		AlertRepo:   store.Alerts(),
		Tanks:       store.Tanks(),
		Shifts:      store.Shifts(),
		Registers:   store.CashRegisters(),
		Sales:       store.Sales(),
		Clients:     store.Clients(),
		Maintenance: store.Maintenance(),
	}, nil, newTestLogger())
	engine.now = func() time.Time { return sweepNow }

	return &engineFixture{store: store, alerts: alerts, engine: engine}
}

func (f *engineFixture) active(t *testing.T, alertType domain.AlertType) []domain.Alert {
	t.Helper()
	list, err := f.alerts.List(context.Background(), domain.AlertFilter{
		Type:     alertType,
		Statuses: []domain.AlertStatus{domain.AlertStatusActive},
	})
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	return list
}

func tank(id, level string) *domain.Tank {
	return &domain.Tank{
		ID:           id,
		StationID:    "station-1",
		Name:         "Gasoil " + id,
		CurrentLevel: d(level),
		Capacity:     d("10000"),
		LowThreshold: d("2000"),
		Active:       true,
	}
}

func TestCheckLowStock_RaisesOnceThenResolves(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newEngineFixture()
	low := tank("tank-1", "1500")

	// Act
	created, err := f.engine.CheckLowStock(ctx, low)
	again, _ := f.engine.CheckLowStock(ctx, low)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatal("expected an alert to be created")
	}
	if again {
		t.Error("expected the second check to be deduplicated")
	}
	if n := len(f.active(t, domain.AlertTypeLowStock)); n != 1 {
		t.Fatalf("expected 1 active alert, got %d", n)
	}

	refilled := tank("tank-1", "8000")
	if created, _ := f.engine.CheckLowStock(ctx, refilled); created {
		t.Error("refilled tank must not raise")
	}
	if n := len(f.active(t, domain.AlertTypeLowStock)); n != 0 {
		t.Errorf("expected alert to be auto-resolved, %d still active", n)
	}
}

func TestCheckLowStock_AcknowledgedDoesNotBlockNewAlert(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	low := tank("tank-1", "1500")

	_, _ = f.engine.CheckLowStock(ctx, low)
	first := f.active(t, domain.AlertTypeLowStock)[0]
	if _, err := f.alerts.Acknowledge(ctx, first.ID, "manager-1"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	created, err := f.engine.CheckLowStock(ctx, low)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Error("dedup only considers ACTIVE alerts")
	}
}

func TestCheckCreditLimit_Hysteresis(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newEngineFixture()
	client := &domain.Client{ID: "client-1", StationID: "station-1", Name: "Transports Kaba", CreditLimit: d("10000"), Active: true}

	// Act & Assert
	client.CurrentBalance = d("8500")
	if created, _ := f.engine.CheckCreditLimit(ctx, client); !created {
		t.Fatal("85% usage must raise")
	}

	client.CurrentBalance = d("7500")
	_, _ = f.engine.CheckCreditLimit(ctx, client)
	if n := len(f.active(t, domain.AlertTypeCreditLimit)); n != 1 {
		t.Fatalf("75%% usage is inside the band, expected alert kept, got %d active", n)
	}

	client.CurrentBalance = d("6500")
	_, _ = f.engine.CheckCreditLimit(ctx, client)
	if n := len(f.active(t, domain.AlertTypeCreditLimit)); n != 0 {
		t.Fatalf("65%% usage must resolve, got %d active", n)
	}
}

func TestCheckIndexVariance_SumsShiftSales(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()

	end := d("1000")
	closed := sweepNow.Add(-time.Hour)
	shift := domain.Shift{ID: "shift-1", StationID: "station-1", Status: domain.ShiftStatusClosed, MeterIndexStart: d("0"), MeterIndexEnd: &end, ClosedAt: &closed}
	f.store.PutShift(shift)
	f.store.PutSale(domain.Sale{ID: "sale-1", ShiftID: "shift-1", Volume: d("500")})
	f.store.PutSale(domain.Sale{ID: "sale-2", ShiftID: "shift-1", Volume: d("470")})

	created, err := f.engine.CheckIndexVariance(ctx, &shift)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !created {
		t.Fatal("expected a 3% index variance alert")
	}
	got := f.active(t, domain.AlertTypeIndexVariance)
	if len(got) != 1 || got[0].Priority != domain.AlertPriorityHigh {
		t.Errorf("expected one HIGH alert, got %+v", got)
	}
}

func TestRaise_LostRaceIsNotAnError(t *testing.T) {
	alerts := &mocks.MockAlertService{
		HasActiveAlertFunc: func(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
			return false, nil
		},
		CreateFunc: func(ctx context.Context, input *ports.CreateAlertInput) (*domain.Alert, error) {
			return nil, domain.ErrDuplicateActiveAlert
		},
	}
	engine := NewEngine(EngineDeps{Alerts: alerts}, nil, newTestLogger())

	created, err := engine.CheckLowStock(context.Background(), tank("tank-1", "100"))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created {
		t.Error("expected created=false when another writer won")
	}
}

func TestRunAllChecks_CreatesAcrossRules(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newEngineFixture()

	f.store.PutTank(*tank("tank-low", "500"))
	f.store.PutTank(*tank("tank-ok", "9000"))
	f.store.PutShift(domain.Shift{ID: "shift-long", StationID: "station-1", Status: domain.ShiftStatusOpen, StartedAt: sweepNow.Add(-14 * time.Hour)})
	f.store.PutClient(domain.Client{ID: "client-1", StationID: "station-1", Name: "Kaba", CreditLimit: d("1000"), CurrentBalance: d("950"), Active: true})
	f.store.PutClient(domain.Client{ID: "client-cash", StationID: "station-1", Name: "Cash only", CreditLimit: d("0"), CurrentBalance: d("950"), Active: true})
	f.store.PutMaintenance(domain.MaintenanceSchedule{ID: "m-1", StationID: "station-1", Equipment: "pump 2", ScheduledAt: sweepNow.Add(24 * time.Hour)})

	// Act
	res, err := f.engine.RunAllChecks(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.AlertsCreated != 4 {
		t.Errorf("expected 4 alerts created, got %d", res.AlertsCreated)
	}
	if res.ChecksRun != 5 {
		t.Errorf("expected 5 checks, got %d", res.ChecksRun)
	}
	if res.Failures != 0 {
		t.Errorf("expected no failures, got %d", res.Failures)
	}

	second, _ := f.engine.RunAllChecks(ctx)
	if second.AlertsCreated != 0 {
		t.Errorf("second sweep must be deduplicated, got %d", second.AlertsCreated)
	}
}

func TestRunAllChecks_FailingEntityDoesNotStopSweep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newEngineFixture()
	f.store.PutTank(*tank("tank-low", "500"))

	shiftA, shiftB := "shift-a", "shift-b"
	end := d("100")
	closed := sweepNow.Add(-time.Hour)
	sales := &mocks.MockSaleRepository{
		FindByShiftIDFunc: func(ctx context.Context, shiftID string) ([]domain.Sale, error) {
			if shiftID == shiftA {
				return nil, errors.New("connection reset")
			}
			panic("corrupt row")
		},
	}
	shifts := &mocks.MockShiftRepository{
		FindClosedSinceFunc: func(ctx context.Context, since time.Time) ([]domain.Shift, error) {
			return []domain.Shift{
				{ID: shiftA, StationID: "station-1", Status: domain.ShiftStatusClosed, MeterIndexEnd: &end, ClosedAt: &closed},
				{ID: shiftB, StationID: "station-1", Status: domain.ShiftStatusClosed, MeterIndexEnd: &end, ClosedAt: &closed},
			}, nil
		},
	}
	f.engine.shifts = shifts
	f.engine.sales = sales

	// Act
	res, err := f.engine.RunAllChecks(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Failures != 2 {
		t.Errorf("expected 2 failures, got %d", res.Failures)
	}
	if res.AlertsCreated != 1 {
		t.Errorf("expected the low stock alert to still be created, got %d", res.AlertsCreated)
	}
}

func TestRunAllChecks_CandidateLoadFailureCounted(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	f.engine.clients = &mocks.MockClientRepository{
		FindWithCreditLimitFunc: func(ctx context.Context) ([]domain.Client, error) {
			return nil, errors.New("timeout")
		},
	}

	res, err := f.engine.RunAllChecks(ctx)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", res.Failures)
	}
}

func TestRunAllChecks_CountErrors(t *testing.T) {
	t.Run("before count fails the sweep", func(t *testing.T) {
		alerts := &mocks.MockAlertService{
			CountActiveFunc: func(ctx context.Context, stationID string) (int64, error) {
				return 0, errors.New("db down")
			},
		}
		f := newEngineFixture()
		f.engine.alerts = alerts

		if _, err := f.engine.RunAllChecks(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("after count failure reports zero created", func(t *testing.T) {
		calls := 0
		alerts := &mocks.MockAlertService{
			CountActiveFunc: func(ctx context.Context, stationID string) (int64, error) {
				calls++
				if calls > 1 {
					return 0, errors.New("db down")
				}
				return 3, nil
			},
		}
		f := newEngineFixture()
		f.engine.alerts = alerts

		res, err := f.engine.RunAllChecks(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.AlertsCreated != 0 {
			t.Errorf("expected 0, got %d", res.AlertsCreated)
		}
	})
}

func TestRunAllChecks_IgnoresCachedCount(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := memory.New()
	stale := mocks.NewMockCache()
	stale.GetFunc = func(ctx context.Context, key string) (string, error) { return "7", nil }
	alerts := newAlertService(store, stale, nil)

	engine := NewEngine(EngineDeps{
		Alerts:      alerts,
		AlertRepo:   store.Alerts(),
		Tanks:       store.Tanks(),
		Shifts:      store.Shifts(),
		Registers:   store.CashRegisters(),
		Sales:       store.Sales(),
		Clients:     store.Clients(),
		Maintenance: store.Maintenance(),
	}, nil, newTestLogger())
	engine.now = func() time.Time { return sweepNow }
	store.PutTank(*tank("tank-low", "500"))

	// Act
	res, err := engine.RunAllChecks(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.AlertsCreated != 1 {
		t.Errorf("expected 1 alert created, got %d", res.AlertsCreated)
	}
}
