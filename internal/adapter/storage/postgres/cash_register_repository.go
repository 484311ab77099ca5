package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type CashRegisterRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCashRegisterRepository(db *gorm.DB, log *zap.Logger) ports.CashRegisterRepository {
	return &CashRegisterRepository{
		db:  db,
		log: log,
	}
}

// Create relies on the unique index on shift_id to turn a concurrent second
// close into domain.ErrAlreadyReconciled.
func (r *CashRegisterRepository) Create(ctx context.Context, register *domain.CashRegister) error {
	err := conn(ctx, r.db).Create(register).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyReconciled
	}
	return err
}

func (r *CashRegisterRepository) FindByShiftID(ctx context.Context, shiftID string) (*domain.CashRegister, error) {
	var register domain.CashRegister
	err := conn(ctx, r.db).Preload("Details").First(&register, "shift_id = ?", shiftID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &register, nil
}

func (r *CashRegisterRepository) ExistsForShift(ctx context.Context, shiftID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.CashRegister{}).Where("shift_id = ?", shiftID).Count(&count).Error
	return count > 0, err
}

func (r *CashRegisterRepository) FindClosedSince(ctx context.Context, since time.Time) ([]domain.CashRegister, error) {
	var registers []domain.CashRegister
	err := conn(ctx, r.db).
		Where("closed_at >= ?", since).
		Order("closed_at").
		Find(&registers).Error
	return registers, err
}

type DebtRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDebtRepository(db *gorm.DB, log *zap.Logger) ports.DebtLedger {
	return &DebtRepository{
		db:  db,
		log: log,
	}
}

// CreateDebt joins the caller's transaction when ctx carries one.
func (r *DebtRepository) CreateDebt(ctx context.Context, debt *domain.PompisteDebt) error {
	return conn(ctx, r.db).Create(debt).Error
}
