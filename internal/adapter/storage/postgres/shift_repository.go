package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type ShiftRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewShiftRepository(db *gorm.DB, log *zap.Logger) ports.ShiftRepository {
	return &ShiftRepository{
		db:  db,
		log: log,
	}
}

func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*domain.Shift, error) {
	var shift domain.Shift
	err := conn(ctx, r.db).First(&shift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *ShiftRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Shift, error) {
	return r.findLocked(ctx, id, "UPDATE")
}

func (r *ShiftRepository) FindByIDForShare(ctx context.Context, id string) (*domain.Shift, error) {
	return r.findLocked(ctx, id, "SHARE")
}

func (r *ShiftRepository) findLocked(ctx context.Context, id, strength string) (*domain.Shift, error) {
	tx, ok := txFrom(ctx)
	if !ok {
		return nil, errLockOutsideTx
	}

	var shift domain.Shift
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		First(&shift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *ShiftRepository) FindOpen(ctx context.Context) ([]domain.Shift, error) {
	var shifts []domain.Shift
	err := conn(ctx, r.db).
		Where("status = ?", domain.ShiftStatusOpen).
		Order("started_at").
		Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) FindClosedSince(ctx context.Context, since time.Time) ([]domain.Shift, error) {
	var shifts []domain.Shift
	err := conn(ctx, r.db).
		Where("status IN ? AND closed_at >= ?",
			[]domain.ShiftStatus{domain.ShiftStatusClosed, domain.ShiftStatusValidated}, since).
		Order("closed_at").
		Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) Update(ctx context.Context, shift *domain.Shift) error {
	return conn(ctx, r.db).Save(shift).Error
}
