package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

var errLockOutsideTx = errors.New("postgres: row lock requested outside a transaction")

type TankRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTankRepository(db *gorm.DB, log *zap.Logger) ports.TankRepository {
	return &TankRepository{
		db:  db,
		log: log,
	}
}

func (r *TankRepository) FindByID(ctx context.Context, id string) (*domain.Tank, error) {
	var tank domain.Tank
	err := conn(ctx, r.db).First(&tank, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tank, nil
}

// FindByIDForUpdate issues SELECT ... FOR UPDATE; concurrent writers of the
// same tank block until the holding transaction commits or rolls back.
func (r *TankRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Tank, error) {
	tx, ok := txFrom(ctx)
	if !ok {
		return nil, errLockOutsideTx
	}

	var tank domain.Tank
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&tank, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tank, nil
}

func (r *TankRepository) FindActive(ctx context.Context, stationID string) ([]domain.Tank, error) {
	var tanks []domain.Tank
	q := conn(ctx, r.db).Where("active = ?", true)
	if stationID != "" {
		q = q.Where("station_id = ?", stationID)
	}
	err := q.Order("station_id, name").Find(&tanks).Error
	return tanks, err
}

func (r *TankRepository) UpdateLevel(ctx context.Context, tank *domain.Tank) error {
	return conn(ctx, r.db).
		Model(&domain.Tank{}).
		Where("id = ?", tank.ID).
		Updates(map[string]interface{}{
			"current_level": tank.CurrentLevel,
			"version":       tank.Version,
			"updated_at":    tank.UpdatedAt,
		}).Error
}

func (r *TankRepository) CompareAndSwap(ctx context.Context, tank *domain.Tank, expectedVersion int64) (bool, error) {
	res := conn(ctx, r.db).
		Model(&domain.Tank{}).
		Where("id = ? AND version = ?", tank.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":          tank.Name,
			"current_level": tank.CurrentLevel,
			"capacity":      tank.Capacity,
			"low_threshold": tank.LowThreshold,
			"version":       tank.Version,
			"updated_at":    tank.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
