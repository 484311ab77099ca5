package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// MockTxManager runs fn directly; rollback is not emulated.
type MockTxManager struct {
	WithinTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	Calls        int
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockTankRepository is a mock implementation of TankRepository
type MockTankRepository struct {
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Tank, error)
	FindByIDForUpdateFunc func(ctx context.Context, id string) (*domain.Tank, error)
	FindActiveFunc        func(ctx context.Context, stationID string) ([]domain.Tank, error)
	UpdateLevelFunc       func(ctx context.Context, tank *domain.Tank) error
	CompareAndSwapFunc    func(ctx context.Context, tank *domain.Tank, expectedVersion int64) (bool, error)
}

func (m *MockTankRepository) FindByID(ctx context.Context, id string) (*domain.Tank, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTankRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Tank, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockTankRepository) FindActive(ctx context.Context, stationID string) ([]domain.Tank, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, stationID)
	}
	return nil, nil
}

func (m *MockTankRepository) UpdateLevel(ctx context.Context, tank *domain.Tank) error {
	if m.UpdateLevelFunc != nil {
		return m.UpdateLevelFunc(ctx, tank)
	}
	return nil
}

func (m *MockTankRepository) CompareAndSwap(ctx context.Context, tank *domain.Tank, expectedVersion int64) (bool, error) {
	if m.CompareAndSwapFunc != nil {
		return m.CompareAndSwapFunc(ctx, tank, expectedVersion)
	}
	return true, nil
}

// MockSaleRepository is a mock implementation of SaleRepository
type MockSaleRepository struct {
	SaveFunc          func(ctx context.Context, sale *domain.Sale) error
	FindByShiftIDFunc func(ctx context.Context, shiftID string) ([]domain.Sale, error)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sale)
	}
	return nil
}

func (m *MockSaleRepository) FindByShiftID(ctx context.Context, shiftID string) ([]domain.Sale, error) {
	if m.FindByShiftIDFunc != nil {
		return m.FindByShiftIDFunc(ctx, shiftID)
	}
	return nil, nil
}

// MockShiftRepository is a mock implementation of ShiftRepository
type MockShiftRepository struct {
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Shift, error)
	FindByIDForUpdateFunc func(ctx context.Context, id string) (*domain.Shift, error)
	FindByIDForShareFunc  func(ctx context.Context, id string) (*domain.Shift, error)
	FindOpenFunc          func(ctx context.Context) ([]domain.Shift, error)
	FindClosedSinceFunc   func(ctx context.Context, since time.Time) ([]domain.Shift, error)
	UpdateFunc            func(ctx context.Context, shift *domain.Shift) error
}

func (m *MockShiftRepository) FindByID(ctx context.Context, id string) (*domain.Shift, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockShiftRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Shift, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockShiftRepository) FindByIDForShare(ctx context.Context, id string) (*domain.Shift, error) {
	if m.FindByIDForShareFunc != nil {
		return m.FindByIDForShareFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockShiftRepository) FindOpen(ctx context.Context) ([]domain.Shift, error) {
	if m.FindOpenFunc != nil {
		return m.FindOpenFunc(ctx)
	}
	return nil, nil
}

func (m *MockShiftRepository) FindClosedSince(ctx context.Context, since time.Time) ([]domain.Shift, error) {
	if m.FindClosedSinceFunc != nil {
		return m.FindClosedSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockShiftRepository) Update(ctx context.Context, shift *domain.Shift) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, shift)
	}
	return nil
}

// MockDebtLedger records every debt it is asked to create.
type MockDebtLedger struct {
	CreateDebtFunc func(ctx context.Context, debt *domain.PompisteDebt) error
	Debts          []domain.PompisteDebt
}

func (m *MockDebtLedger) CreateDebt(ctx context.Context, debt *domain.PompisteDebt) error {
	if m.CreateDebtFunc != nil {
		return m.CreateDebtFunc(ctx, debt)
	}
	m.Debts = append(m.Debts, *debt)
	return nil
}

// MockAlertRepository is a mock implementation of AlertRepository
type MockAlertRepository struct {
	CreateFunc                func(ctx context.Context, alert *domain.Alert) error
	FindByIDFunc              func(ctx context.Context, id string) (*domain.Alert, error)
	TransitionFunc            func(ctx context.Context, alert *domain.Alert, from domain.AlertStatus) (bool, error)
	ExistsActiveFunc          func(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error)
	ResolveActiveByEntityFunc func(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string, at time.Time) (int64, error)
	CountActiveFunc           func(ctx context.Context, stationID string) (int64, error)
	ListFunc                  func(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, alert)
	}
	return nil
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAlertRepository) Transition(ctx context.Context, alert *domain.Alert, from domain.AlertStatus) (bool, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, alert, from)
	}
	return true, nil
}

func (m *MockAlertRepository) ExistsActive(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
	if m.ExistsActiveFunc != nil {
		return m.ExistsActiveFunc(ctx, stationID, alertType, relatedEntityID)
	}
	return false, nil
}

func (m *MockAlertRepository) ResolveActiveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string, at time.Time) (int64, error) {
	if m.ResolveActiveByEntityFunc != nil {
		return m.ResolveActiveByEntityFunc(ctx, stationID, alertType, relatedEntityID, at)
	}
	return 0, nil
}

func (m *MockAlertRepository) CountActive(ctx context.Context, stationID string) (int64, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, stationID)
	}
	return 0, nil
}

func (m *MockAlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	FindByIDFunc            func(ctx context.Context, id string) (*domain.Client, error)
	FindWithCreditLimitFunc func(ctx context.Context) ([]domain.Client, error)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClientRepository) FindWithCreditLimit(ctx context.Context) ([]domain.Client, error) {
	if m.FindWithCreditLimitFunc != nil {
		return m.FindWithCreditLimitFunc(ctx)
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.User, error)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}
