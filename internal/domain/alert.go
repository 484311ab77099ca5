package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	AlertTypeLowStock         AlertType = "LOW_STOCK"
	AlertTypeShiftOpenTooLong AlertType = "SHIFT_OPEN_TOO_LONG"
	AlertTypeCashVariance     AlertType = "CASH_VARIANCE"
	AlertTypeIndexVariance    AlertType = "INDEX_VARIANCE"
	AlertTypeCreditLimit      AlertType = "CREDIT_LIMIT"
	AlertTypeMaintenanceDue   AlertType = "MAINTENANCE_DUE"
)

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeLowStock, AlertTypeShiftOpenTooLong, AlertTypeCashVariance,
		AlertTypeIndexVariance, AlertTypeCreditLimit, AlertTypeMaintenanceDue:
		return true
	}
	return false
}

type AlertPriority string

const (
	AlertPriorityLow      AlertPriority = "LOW"
	AlertPriorityMedium   AlertPriority = "MEDIUM"
	AlertPriorityHigh     AlertPriority = "HIGH"
	AlertPriorityCritical AlertPriority = "CRITICAL"
)

// Rank orders priorities from LOW (1) to CRITICAL (4); unknown values rank 0.
func (p AlertPriority) Rank() int {
	switch p {
	case AlertPriorityLow:
		return 1
	case AlertPriorityMedium:
		return 2
	case AlertPriorityHigh:
		return 3
	case AlertPriorityCritical:
		return 4
	}
	return 0
}

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "ACTIVE"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
	AlertStatusIgnored      AlertStatus = "IGNORED"
)

// IsTerminal reports whether no further transition is allowed.
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusResolved || s == AlertStatusIgnored
}

// Related entity types carried on alerts
const (
	EntityTank         = "tank"
	EntityShift        = "shift"
	EntityCashRegister = "cash_register"
	EntityClient       = "client"
	EntityMaintenance  = "maintenance"
)

// Alert is an operational alert raised by the trigger engine or by hand.
type Alert struct {
	ID                string        `json:"id" gorm:"primaryKey"`
	StationID         string        `json:"station_id" gorm:"index:idx_alerts_lookup"`
	Type              AlertType     `json:"type" gorm:"index:idx_alerts_lookup"`
	Priority          AlertPriority `json:"priority"`
	Status            AlertStatus   `json:"status" gorm:"index:idx_alerts_lookup"`
	Title             string        `json:"title"`
	Message           string        `json:"message"`
	RelatedEntityType *string       `json:"related_entity_type,omitempty"`
	RelatedEntityID   *string       `json:"related_entity_id,omitempty" gorm:"index"`
	TriggeredAt       time.Time     `json:"triggered_at"`
	AcknowledgedAt    *time.Time    `json:"acknowledged_at,omitempty"`
	AcknowledgedBy    *string       `json:"acknowledged_by,omitempty"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`
	ResolvedBy        *string       `json:"resolved_by,omitempty"`
}

// CanTransition reports whether the alert may move to next.
func (a *Alert) CanTransition(next AlertStatus) bool {
	switch next {
	case AlertStatusAcknowledged, AlertStatusIgnored:
		return a.Status == AlertStatusActive
	case AlertStatusResolved:
		return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
	}
	return false
}

// EntityRef points an alert at the record that caused it.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// AlertFilter narrows alert listings. Zero values match everything.
type AlertFilter struct {
	StationID string
	Type      AlertType
	Statuses  []AlertStatus
	Limit     int
	Offset    int
}

// AlertThresholds configures the trigger rules.
type AlertThresholds struct {
	LowStockPercent        decimal.Decimal
	ShiftMaxHours          float64
	ShiftBlockHours        float64
	CashTolerancePercent   decimal.Decimal
	CashAbsoluteThreshold  decimal.Decimal
	CashBlockThreshold     decimal.Decimal
	CashHighPercent        decimal.Decimal
	IndexMinPercent        decimal.Decimal
	IndexMinUnits          decimal.Decimal
	IndexHighPercent       decimal.Decimal
	IndexHighUnits         decimal.Decimal
	CreditWarningPercent   decimal.Decimal
	CreditHysteresis       decimal.Decimal
	MaintenanceLookahead   time.Duration
	MaintenanceMediumAhead time.Duration
	VarianceLookback       time.Duration
}

// DefaultAlertThresholds returns the thresholds used when none are configured.
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		LowStockPercent:        decimal.NewFromInt(20),
		ShiftMaxHours:          12,
		ShiftBlockHours:        16,
		CashTolerancePercent:   decimal.NewFromInt(1),
		CashAbsoluteThreshold:  decimal.NewFromInt(5000),
		CashBlockThreshold:     decimal.NewFromInt(50000),
		CashHighPercent:        decimal.NewFromInt(5),
		IndexMinPercent:        decimal.NewFromInt(1),
		IndexMinUnits:          decimal.NewFromInt(5),
		IndexHighPercent:       decimal.NewFromInt(3),
		IndexHighUnits:         decimal.NewFromInt(50),
		CreditWarningPercent:   decimal.NewFromInt(80),
		CreditHysteresis:       decimal.NewFromInt(10),
		MaintenanceLookahead:   7 * 24 * time.Hour,
		MaintenanceMediumAhead: 2 * 24 * time.Hour,
		VarianceLookback:       24 * time.Hour,
	}
}
