package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "OPEN"
	ShiftStatusClosed    ShiftStatus = "CLOSED"
	ShiftStatusValidated ShiftStatus = "VALIDATED"
)

// Shift is one attendant's session on one nozzle.
type Shift struct {
	ID              string           `json:"id" gorm:"primaryKey"`
	StationID       string           `json:"station_id" gorm:"index"`
	AttendantID     string           `json:"attendant_id" gorm:"index"`
	NozzleID        string           `json:"nozzle_id"`
	TankID          string           `json:"tank_id,omitempty"`
	Status          ShiftStatus      `json:"status" gorm:"index"`
	StartedAt       time.Time        `json:"started_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty" gorm:"index"`
	ValidatedAt     *time.Time       `json:"validated_at,omitempty"`
	ValidatedBy     *string          `json:"validated_by,omitempty"`
	MeterIndexStart decimal.Decimal  `json:"meter_index_start" gorm:"type:numeric(14,3)"`
	MeterIndexEnd   *decimal.Decimal `json:"meter_index_end,omitempty" gorm:"type:numeric(14,3)"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OpenHours returns how long the shift has been open at now.
func (s *Shift) OpenHours(now time.Time) float64 {
	return now.Sub(s.StartedAt).Hours()
}

// MeterVolume is the dispensed volume derived from the nozzle meter indexes.
// It is zero while the end index is unknown.
func (s *Shift) MeterVolume() decimal.Decimal {
	if s.MeterIndexEnd == nil {
		return decimal.Zero
	}
	return s.MeterIndexEnd.Sub(s.MeterIndexStart)
}
