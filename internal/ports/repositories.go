package ports

import (
	"context"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// Repositories follow one convention: lookups by id return (nil, nil) when
// the record does not exist.

// TxManager runs fn inside a single database transaction. Repositories
// called with the context handed to fn join that transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TankRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Tank, error)
	// FindByIDForUpdate reads the tank and holds an exclusive row lock until
	// the surrounding transaction ends. It must be called inside WithinTx.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Tank, error)
	// FindActive lists active tanks, optionally scoped to a station.
	FindActive(ctx context.Context, stationID string) ([]domain.Tank, error)
	// UpdateLevel persists CurrentLevel, Version and UpdatedAt of a locked tank.
	UpdateLevel(ctx context.Context, tank *domain.Tank) error
	// CompareAndSwap writes tank only if the stored version still equals
	// expectedVersion. It reports whether a row was updated.
	CompareAndSwap(ctx context.Context, tank *domain.Tank, expectedVersion int64) (bool, error)
}

type StockRepository interface {
	SaveDelivery(ctx context.Context, delivery *domain.Delivery) error
	SaveMovement(ctx context.Context, movement *domain.StockMovement) error
	FindMovements(ctx context.Context, tankID string, limit int) ([]domain.StockMovement, error)
}

type SaleRepository interface {
	// Save stores the sale together with its payments.
	Save(ctx context.Context, sale *domain.Sale) error
	FindByShiftID(ctx context.Context, shiftID string) ([]domain.Sale, error)
}

type PaymentMethodRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.PaymentMethod, error)
}

type ShiftRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Shift, error)
	// FindByIDForUpdate reads the shift under an exclusive row lock; status
	// changes and reconciliation take it. FindByIDForShare takes a shared
	// lock, so sales on one shift run together but wait for a close. Both
	// must be called inside WithinTx.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Shift, error)
	FindByIDForShare(ctx context.Context, id string) (*domain.Shift, error)
	FindOpen(ctx context.Context) ([]domain.Shift, error)
	FindClosedSince(ctx context.Context, since time.Time) ([]domain.Shift, error)
	Update(ctx context.Context, shift *domain.Shift) error
}

type CashRegisterRepository interface {
	// Create stores the register and its details. A second register for the
	// same shift fails with domain.ErrAlreadyReconciled.
	Create(ctx context.Context, register *domain.CashRegister) error
	FindByShiftID(ctx context.Context, shiftID string) (*domain.CashRegister, error)
	ExistsForShift(ctx context.Context, shiftID string) (bool, error)
	FindClosedSince(ctx context.Context, since time.Time) ([]domain.CashRegister, error)
}

// DebtLedger records attendant debts. It is owned by another part of the
// back office; this core only creates entries.
type DebtLedger interface {
	CreateDebt(ctx context.Context, debt *domain.PompisteDebt) error
}

type AlertRepository interface {
	// Create inserts the alert. A second ACTIVE alert for the same
	// (station, type, related entity) fails with domain.ErrDuplicateActiveAlert.
	Create(ctx context.Context, alert *domain.Alert) error
	FindByID(ctx context.Context, id string) (*domain.Alert, error)
	// Transition writes the status and the acknowledge/resolve fields of
	// alert only if the stored status still equals from. It reports whether
	// the row changed.
	Transition(ctx context.Context, alert *domain.Alert, from domain.AlertStatus) (bool, error)
	ExistsActive(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error)
	// ResolveActiveByEntity moves every ACTIVE or ACKNOWLEDGED alert matching
	// the tuple to RESOLVED and returns how many rows changed.
	ResolveActiveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string, at time.Time) (int64, error)
	CountActive(ctx context.Context, stationID string) (int64, error)
	List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
}

type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// FindWithCreditLimit lists active clients that have a positive credit limit.
	FindWithCreditLimit(ctx context.Context) ([]domain.Client, error)
}

type MaintenanceRepository interface {
	// FindPendingBefore lists uncompleted schedules due before until,
	// including overdue ones.
	FindPendingBefore(ctx context.Context, until time.Time) ([]domain.MaintenanceSchedule, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
