package mocks

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// MockInventoryService is a mock implementation of InventoryService interface
type MockInventoryService struct {
	GetTankFunc             func(ctx context.Context, id string) (*domain.Tank, error)
	ListTanksFunc           func(ctx context.Context, stationID string) ([]domain.Tank, error)
	DecrementLevelFunc      func(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error)
	IncrementLevelFunc      func(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error)
	AdjustLevelFunc         func(ctx context.Context, tankID string, newLevel decimal.Decimal, reason string) (*domain.Tank, error)
	CompareAndSwapLevelFunc func(ctx context.Context, tankID string, expectedVersion int64, patch domain.TankPatch) (*domain.Tank, error)
	ReceiveDeliveryFunc     func(ctx context.Context, req *ports.DeliveryRequest) (*ports.DeliveryResult, error)
	RecordSaleFunc          func(ctx context.Context, req *ports.SaleRequest) (*ports.SaleResult, error)
}

func (m *MockInventoryService) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	if m.GetTankFunc != nil {
		return m.GetTankFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockInventoryService) ListTanks(ctx context.Context, stationID string) ([]domain.Tank, error) {
	if m.ListTanksFunc != nil {
		return m.ListTanksFunc(ctx, stationID)
	}
	return []domain.Tank{}, nil
}

func (m *MockInventoryService) DecrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error) {
	if m.DecrementLevelFunc != nil {
		return m.DecrementLevelFunc(ctx, tankID, quantity)
	}
	return nil, nil
}

func (m *MockInventoryService) IncrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error) {
	if m.IncrementLevelFunc != nil {
		return m.IncrementLevelFunc(ctx, tankID, quantity)
	}
	return nil, nil
}

func (m *MockInventoryService) AdjustLevel(ctx context.Context, tankID string, newLevel decimal.Decimal, reason string) (*domain.Tank, error) {
	if m.AdjustLevelFunc != nil {
		return m.AdjustLevelFunc(ctx, tankID, newLevel, reason)
	}
	return nil, nil
}

func (m *MockInventoryService) CompareAndSwapLevel(ctx context.Context, tankID string, expectedVersion int64, patch domain.TankPatch) (*domain.Tank, error) {
	if m.CompareAndSwapLevelFunc != nil {
		return m.CompareAndSwapLevelFunc(ctx, tankID, expectedVersion, patch)
	}
	return nil, nil
}

func (m *MockInventoryService) ReceiveDelivery(ctx context.Context, req *ports.DeliveryRequest) (*ports.DeliveryResult, error) {
	if m.ReceiveDeliveryFunc != nil {
		return m.ReceiveDeliveryFunc(ctx, req)
	}
	return &ports.DeliveryResult{}, nil
}

func (m *MockInventoryService) RecordSale(ctx context.Context, req *ports.SaleRequest) (*ports.SaleResult, error) {
	if m.RecordSaleFunc != nil {
		return m.RecordSaleFunc(ctx, req)
	}
	return &ports.SaleResult{}, nil
}

// MockAlertService is a mock implementation of AlertService interface
type MockAlertService struct {
	CreateFunc              func(ctx context.Context, input *ports.CreateAlertInput) (*domain.Alert, error)
	GetFunc                 func(ctx context.Context, id string) (*domain.Alert, error)
	ListFunc                func(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
	HasActiveAlertFunc      func(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error)
	AcknowledgeFunc         func(ctx context.Context, id, userID string) (*domain.Alert, error)
	ResolveFunc             func(ctx context.Context, id, userID string) (*domain.Alert, error)
	IgnoreFunc              func(ctx context.Context, id string) (*domain.Alert, error)
	AutoResolveByEntityFunc func(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string) (int64, error)
	CountActiveFunc         func(ctx context.Context, stationID string) (int64, error)
}

func (m *MockAlertService) Create(ctx context.Context, input *ports.CreateAlertInput) (*domain.Alert, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return &domain.Alert{StationID: input.StationID, Type: input.Type, Priority: input.Priority, Status: domain.AlertStatusActive}, nil
}

func (m *MockAlertService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockAlertService) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []domain.Alert{}, nil
}

func (m *MockAlertService) HasActiveAlert(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
	if m.HasActiveAlertFunc != nil {
		return m.HasActiveAlertFunc(ctx, stationID, alertType, relatedEntityID)
	}
	return false, nil
}

func (m *MockAlertService) Acknowledge(ctx context.Context, id, userID string) (*domain.Alert, error) {
	if m.AcknowledgeFunc != nil {
		return m.AcknowledgeFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockAlertService) Resolve(ctx context.Context, id, userID string) (*domain.Alert, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockAlertService) Ignore(ctx context.Context, id string) (*domain.Alert, error) {
	if m.IgnoreFunc != nil {
		return m.IgnoreFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAlertService) AutoResolveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string) (int64, error) {
	if m.AutoResolveByEntityFunc != nil {
		return m.AutoResolveByEntityFunc(ctx, stationID, alertType, relatedEntityID)
	}
	return 0, nil
}

func (m *MockAlertService) CountActive(ctx context.Context, stationID string) (int64, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, stationID)
	}
	return 0, nil
}

// MockAlertEngine is a mock implementation of AlertEngine interface
type MockAlertEngine struct {
	CheckLowStockFunc      func(ctx context.Context, tank *domain.Tank) (bool, error)
	CheckShiftDurationFunc func(ctx context.Context, shift *domain.Shift) (bool, error)
	CheckCashVarianceFunc  func(ctx context.Context, register *domain.CashRegister) (bool, error)
	CheckIndexVarianceFunc func(ctx context.Context, shift *domain.Shift) (bool, error)
	CheckCreditLimitFunc   func(ctx context.Context, client *domain.Client) (bool, error)
	CheckMaintenanceFunc   func(ctx context.Context, schedule *domain.MaintenanceSchedule) (bool, error)
	RunAllChecksFunc       func(ctx context.Context) (*ports.RunResult, error)
}

func (m *MockAlertEngine) CheckLowStock(ctx context.Context, tank *domain.Tank) (bool, error) {
	if m.CheckLowStockFunc != nil {
		return m.CheckLowStockFunc(ctx, tank)
	}
	return false, nil
}

func (m *MockAlertEngine) CheckShiftDuration(ctx context.Context, shift *domain.Shift) (bool, error) {
	if m.CheckShiftDurationFunc != nil {
		return m.CheckShiftDurationFunc(ctx, shift)
	}
	return false, nil
}

func (m *MockAlertEngine) CheckCashVariance(ctx context.Context, register *domain.CashRegister) (bool, error) {
	if m.CheckCashVarianceFunc != nil {
		return m.CheckCashVarianceFunc(ctx, register)
	}
	return false, nil
}

func (m *MockAlertEngine) CheckIndexVariance(ctx context.Context, shift *domain.Shift) (bool, error) {
	if m.CheckIndexVarianceFunc != nil {
		return m.CheckIndexVarianceFunc(ctx, shift)
	}
	return false, nil
}

func (m *MockAlertEngine) CheckCreditLimit(ctx context.Context, client *domain.Client) (bool, error) {
	if m.CheckCreditLimitFunc != nil {
		return m.CheckCreditLimitFunc(ctx, client)
	}
	return false, nil
}

func (m *MockAlertEngine) CheckMaintenance(ctx context.Context, schedule *domain.MaintenanceSchedule) (bool, error) {
	if m.CheckMaintenanceFunc != nil {
		return m.CheckMaintenanceFunc(ctx, schedule)
	}
	return false, nil
}

func (m *MockAlertEngine) RunAllChecks(ctx context.Context) (*ports.RunResult, error) {
	if m.RunAllChecksFunc != nil {
		return m.RunAllChecksFunc(ctx)
	}
	return &ports.RunResult{}, nil
}

// MockReconciliationService is a mock implementation of ReconciliationService interface
type MockReconciliationService struct {
	CloseFunc      func(ctx context.Context, req *ports.CloseRequest) (*ports.CloseResult, error)
	GetByShiftFunc func(ctx context.Context, shiftID string) (*domain.CashRegister, error)
}

func (m *MockReconciliationService) Close(ctx context.Context, req *ports.CloseRequest) (*ports.CloseResult, error) {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, req)
	}
	return &ports.CloseResult{}, nil
}

func (m *MockReconciliationService) GetByShift(ctx context.Context, shiftID string) (*domain.CashRegister, error) {
	if m.GetByShiftFunc != nil {
		return m.GetByShiftFunc(ctx, shiftID)
	}
	return nil, domain.ErrNotFound
}

// MockShiftService is a mock implementation of ShiftService interface
type MockShiftService struct {
	GetFunc      func(ctx context.Context, id string) (*domain.Shift, error)
	CloseFunc    func(ctx context.Context, id string, meterIndexEnd decimal.Decimal) (*domain.Shift, error)
	ValidateFunc func(ctx context.Context, id, userID string) (*domain.Shift, error)
}

func (m *MockShiftService) Get(ctx context.Context, id string) (*domain.Shift, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockShiftService) Close(ctx context.Context, id string, meterIndexEnd decimal.Decimal) (*domain.Shift, error) {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, id, meterIndexEnd)
	}
	return nil, nil
}

func (m *MockShiftService) Validate(ctx context.Context, id, userID string) (*domain.Shift, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, id, userID)
	}
	return nil, nil
}

// MockAlertNotifier records the alerts it was asked to deliver.
type MockAlertNotifier struct {
	mu              sync.Mutex
	NotifyAlertFunc func(ctx context.Context, alert *domain.Alert) error
	Notified        []domain.Alert
}

func (m *MockAlertNotifier) NotifyAlert(ctx context.Context, alert *domain.Alert) error {
	if m.NotifyAlertFunc != nil {
		return m.NotifyAlertFunc(ctx, alert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notified = append(m.Notified, *alert)
	return nil
}

// MockEmailService captures outgoing e-mails.
type MockEmailService struct {
	mu         sync.Mutex
	SendFunc   func(ctx context.Context, to, subject, htmlBody string) error
	SentEmails []SentEmail
}

// SentEmail represents an email that was sent (for testing)
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, htmlBody)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
