package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// InventoryService is the only writer of tank levels.
type InventoryService interface {
	GetTank(ctx context.Context, id string) (*domain.Tank, error)
	ListTanks(ctx context.Context, stationID string) ([]domain.Tank, error)
	DecrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error)
	IncrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error)
	AdjustLevel(ctx context.Context, tankID string, newLevel decimal.Decimal, reason string) (*domain.Tank, error)
	CompareAndSwapLevel(ctx context.Context, tankID string, expectedVersion int64, patch domain.TankPatch) (*domain.Tank, error)
	ReceiveDelivery(ctx context.Context, req *DeliveryRequest) (*DeliveryResult, error)
	RecordSale(ctx context.Context, req *SaleRequest) (*SaleResult, error)
}

// DeliveryRequest describes fuel received into a tank
type DeliveryRequest struct {
	TankID      string          `json:"tank_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	SupplierRef string          `json:"supplier_ref"`
	DeliveredAt time.Time       `json:"delivered_at"`
	CreatedBy   string          `json:"created_by"`
}

type DeliveryResult struct {
	Delivery *domain.Delivery `json:"delivery"`
	Tank     *domain.Tank     `json:"tank"`
}

// SaleRequest describes a pump sale and how it was paid
type SaleRequest struct {
	ShiftID   string               `json:"shift_id"`
	TankID    string               `json:"tank_id"`
	Volume    decimal.Decimal      `json:"volume"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	Payments  []SalePaymentRequest `json:"payments"`
	SoldAt    time.Time            `json:"sold_at"`
}

type SalePaymentRequest struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
}

type SaleResult struct {
	Sale *domain.Sale `json:"sale"`
	Tank *domain.Tank `json:"tank"`
}

// AlertService owns alert records and their state machine.
type AlertService interface {
	Create(ctx context.Context, input *CreateAlertInput) (*domain.Alert, error)
	Get(ctx context.Context, id string) (*domain.Alert, error)
	List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
	HasActiveAlert(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error)
	Acknowledge(ctx context.Context, id, userID string) (*domain.Alert, error)
	Resolve(ctx context.Context, id, userID string) (*domain.Alert, error)
	Ignore(ctx context.Context, id string) (*domain.Alert, error)
	AutoResolveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string) (int64, error)
	CountActive(ctx context.Context, stationID string) (int64, error)
}

// CreateAlertInput is the payload for a new ACTIVE alert
type CreateAlertInput struct {
	StationID     string               `json:"station_id"`
	Type          domain.AlertType     `json:"type"`
	Priority      domain.AlertPriority `json:"priority"`
	Title         string               `json:"title"`
	Message       string               `json:"message"`
	RelatedEntity *domain.EntityRef    `json:"related_entity,omitempty"`
}

// AlertEngine evaluates business conditions into alert side effects.
type AlertEngine interface {
	CheckLowStock(ctx context.Context, tank *domain.Tank) (bool, error)
	CheckShiftDuration(ctx context.Context, shift *domain.Shift) (bool, error)
	CheckCashVariance(ctx context.Context, register *domain.CashRegister) (bool, error)
	CheckIndexVariance(ctx context.Context, shift *domain.Shift) (bool, error)
	CheckCreditLimit(ctx context.Context, client *domain.Client) (bool, error)
	CheckMaintenance(ctx context.Context, schedule *domain.MaintenanceSchedule) (bool, error)
	RunAllChecks(ctx context.Context) (*RunResult, error)
}

// RunResult summarizes one sweep
type RunResult struct {
	ChecksRun     int           `json:"checks_run"`
	AlertsCreated int64         `json:"alerts_created"`
	Failures      int           `json:"failures"`
	Duration      time.Duration `json:"duration"`
}

// ReconciliationService closes a shift's cash register.
type ReconciliationService interface {
	Close(ctx context.Context, req *CloseRequest) (*CloseResult, error)
	GetByShift(ctx context.Context, shiftID string) (*domain.CashRegister, error)
}

// CloseRequest carries the attendant's declared amounts
type CloseRequest struct {
	ShiftID                      string           `json:"shift_id"`
	ClosedBy                     string           `json:"closed_by"`
	Declared                     []DeclaredAmount `json:"declared"`
	VarianceNote                 string           `json:"variance_note,omitempty"`
	CreateDebtOnNegativeVariance bool             `json:"create_debt_on_negative_variance"`
}

type DeclaredAmount struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
}

type CloseResult struct {
	Register    *domain.CashRegister `json:"register"`
	DebtCreated bool                 `json:"debt_created"`
	Debt        *domain.PompisteDebt `json:"debt,omitempty"`
}

// ShiftService moves shifts through OPEN -> CLOSED -> VALIDATED.
type ShiftService interface {
	Get(ctx context.Context, id string) (*domain.Shift, error)
	Close(ctx context.Context, id string, meterIndexEnd decimal.Decimal) (*domain.Shift, error)
	Validate(ctx context.Context, id, userID string) (*domain.Shift, error)
}

// AlertNotifier pushes alerts to people outside the back office.
type AlertNotifier interface {
	NotifyAlert(ctx context.Context, alert *domain.Alert) error
}

// EmailService delivers one HTML e-mail.
type EmailService interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
