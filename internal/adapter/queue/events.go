package queue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

const (
	SubjectLevelChanged   = "inventory.level_changed"
	SubjectRegisterClosed = "cash.register_closed"
	SubjectAlertCreated   = "alerts.created"
	SubjectAlertUpdated   = "alerts.updated"
)

// LevelChangedEvent is published after every committed tank mutation.
type LevelChangedEvent struct {
	TankID     string              `json:"tank_id"`
	StationID  string              `json:"station_id"`
	Kind       domain.MovementKind `json:"kind"`
	Level      decimal.Decimal     `json:"level"`
	Version    int64               `json:"version"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// RegisterClosedEvent is published once a cash register is committed.
type RegisterClosedEvent struct {
	RegisterID string          `json:"register_id"`
	ShiftID    string          `json:"shift_id"`
	StationID  string          `json:"station_id"`
	Variance   decimal.Decimal `json:"variance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// AlertEvent carries an alert snapshot on alerts.created and alerts.updated.
type AlertEvent struct {
	Alert      domain.Alert `json:"alert"`
	OccurredAt time.Time    `json:"occurred_at"`
}
