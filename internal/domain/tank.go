package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tank is a physical fuel reservoir. CurrentLevel and Version are owned by
// the inventory ledger and must not be written anywhere else.
type Tank struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	StationID    string          `json:"station_id" gorm:"index"`
	Name         string          `json:"name"`
	FuelType     string          `json:"fuel_type"`
	CurrentLevel decimal.Decimal `json:"current_level" gorm:"type:numeric(14,3);not null;default:0"`
	Capacity     decimal.Decimal `json:"capacity" gorm:"type:numeric(14,3);not null"`
	LowThreshold decimal.Decimal `json:"low_threshold" gorm:"type:numeric(14,3);not null;default:0"`
	Version      int64           `json:"version" gorm:"not null;default:0"`
	Active       bool            `json:"active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FillPercent returns the current level as a percentage of capacity.
func (t *Tank) FillPercent() decimal.Decimal {
	if !t.Capacity.IsPositive() {
		return decimal.Zero
	}
	return t.CurrentLevel.Div(t.Capacity).Mul(decimal.NewFromInt(100))
}

// CheckLevel verifies that level fits in the tank.
func (t *Tank) CheckLevel(level decimal.Decimal) error {
	if level.IsNegative() || level.GreaterThan(t.Capacity) {
		return &InvalidLevelError{TankID: t.ID, Level: level, Capacity: t.Capacity}
	}
	return nil
}

// TankPatch carries the fields an administrative compare-and-swap update may
// change. Nil fields are left untouched.
type TankPatch struct {
	Name         *string          `json:"name,omitempty"`
	CurrentLevel *decimal.Decimal `json:"current_level,omitempty"`
	Capacity     *decimal.Decimal `json:"capacity,omitempty"`
	LowThreshold *decimal.Decimal `json:"low_threshold,omitempty"`
}

// Apply returns a copy of t with the patch applied. It does not bump the
// version.
func (p TankPatch) Apply(t Tank) Tank {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.CurrentLevel != nil {
		t.CurrentLevel = *p.CurrentLevel
	}
	if p.Capacity != nil {
		t.Capacity = *p.Capacity
	}
	if p.LowThreshold != nil {
		t.LowThreshold = *p.LowThreshold
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TankPatch) IsEmpty() bool {
	return p.Name == nil && p.CurrentLevel == nil && p.Capacity == nil && p.LowThreshold == nil
}

// MovementKind classifies a stock movement
type MovementKind string

const (
	MovementKindSale       MovementKind = "SALE"
	MovementKindDelivery   MovementKind = "DELIVERY"
	MovementKindAdjustment MovementKind = "ADJUSTMENT"
)

// StockMovement is the append-only log of every level change.
type StockMovement struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	TankID        string          `json:"tank_id" gorm:"index"`
	Kind          MovementKind    `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3)"` // signed
	LevelBefore   decimal.Decimal `json:"level_before" gorm:"type:numeric(14,3)"`
	LevelAfter    decimal.Decimal `json:"level_after" gorm:"type:numeric(14,3)"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty" gorm:"index"`
	Reason        string          `json:"reason,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Delivery records fuel received from a supplier
type Delivery struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	TankID      string          `json:"tank_id" gorm:"index"`
	StationID   string          `json:"station_id" gorm:"index"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3)"`
	SupplierRef string          `json:"supplier_ref,omitempty"`
	DeliveredAt time.Time       `json:"delivered_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
