package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegister is the end-of-shift reconciliation of expected against
// declared amounts. It is written once and never updated.
type CashRegister struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	ShiftID       string          `json:"shift_id" gorm:"uniqueIndex"`
	StationID     string          `json:"station_id" gorm:"index"`
	ExpectedTotal decimal.Decimal `json:"expected_total" gorm:"type:numeric(14,2)"`
	ActualTotal   decimal.Decimal `json:"actual_total" gorm:"type:numeric(14,2)"`
	Variance      decimal.Decimal `json:"variance" gorm:"type:numeric(14,2)"`
	VarianceNote  string          `json:"variance_note,omitempty"`
	ClosedAt      time.Time       `json:"closed_at" gorm:"index"`
	ClosedBy      string          `json:"closed_by,omitempty"`
	Details       []PaymentDetail `json:"details" gorm:"foreignKey:CashRegisterID"`
}

// PaymentDetail is one payment channel's line in a cash register.
type PaymentDetail struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	CashRegisterID  string          `json:"cash_register_id" gorm:"index"`
	PaymentMethodID string          `json:"payment_method_id"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount" gorm:"type:numeric(14,2)"`
	ActualAmount    decimal.Decimal `json:"actual_amount" gorm:"type:numeric(14,2)"`
	Variance        decimal.Decimal `json:"variance" gorm:"type:numeric(14,2)"`
}

// DetailFor returns the line for a payment method, or nil.
func (r *CashRegister) DetailFor(paymentMethodID string) *PaymentDetail {
	for i := range r.Details {
		if r.Details[i].PaymentMethodID == paymentMethodID {
			return &r.Details[i]
		}
	}
	return nil
}

type DebtReason string

const DebtReasonCashVariance DebtReason = "CASH_VARIANCE"

// PompisteDebt is an amount owed by an attendant.
type PompisteDebt struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	AttendantID    string          `json:"attendant_id" gorm:"index"`
	StationID      string          `json:"station_id" gorm:"index"`
	CashRegisterID string          `json:"cash_register_id" gorm:"index"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"`
	Reason         DebtReason      `json:"reason"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
