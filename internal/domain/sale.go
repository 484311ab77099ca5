package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is a payment channel accepted at the pump (cash, card, voucher...).
type PaymentMethod struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Code   string `json:"code" gorm:"uniqueIndex"`
	Name   string `json:"name"`
	Active bool   `json:"active" gorm:"default:true"`
}

// Sale is a point-of-sale fuel transaction recorded against a shift.
type Sale struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	ShiftID   string          `json:"shift_id" gorm:"index"`
	StationID string          `json:"station_id" gorm:"index"`
	TankID    string          `json:"tank_id" gorm:"index"`
	Volume    decimal.Decimal `json:"volume" gorm:"type:numeric(14,3)"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,3)"`
	Total     decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`
	SoldAt    time.Time       `json:"sold_at"`
	Payments  []SalePayment   `json:"payments,omitempty" gorm:"foreignKey:SaleID"`
	CreatedAt time.Time       `json:"created_at"`
}

// SalePayment is the share of a sale settled through one payment method.
type SalePayment struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	SaleID          string          `json:"sale_id" gorm:"index"`
	PaymentMethodID string          `json:"payment_method_id" gorm:"index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
}

// Client is a credit customer of a station.
type Client struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	StationID      string          `json:"station_id" gorm:"index"`
	Name           string          `json:"name"`
	CreditLimit    decimal.Decimal `json:"credit_limit" gorm:"type:numeric(14,2)"`
	CurrentBalance decimal.Decimal `json:"current_balance" gorm:"type:numeric(14,2)"`
	Active         bool            `json:"active" gorm:"default:true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MaintenanceSchedule is a planned intervention on station equipment.
type MaintenanceSchedule struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	StationID   string     `json:"station_id" gorm:"index"`
	Equipment   string     `json:"equipment"`
	ScheduledAt time.Time  `json:"scheduled_at" gorm:"index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
