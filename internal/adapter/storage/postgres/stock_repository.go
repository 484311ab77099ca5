package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type StockRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStockRepository(db *gorm.DB, log *zap.Logger) ports.StockRepository {
	return &StockRepository{
		db:  db,
		log: log,
	}
}

func (r *StockRepository) SaveDelivery(ctx context.Context, delivery *domain.Delivery) error {
	return conn(ctx, r.db).Create(delivery).Error
}

func (r *StockRepository) SaveMovement(ctx context.Context, movement *domain.StockMovement) error {
	return conn(ctx, r.db).Create(movement).Error
}

func (r *StockRepository) FindMovements(ctx context.Context, tankID string, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []domain.StockMovement
	err := conn(ctx, r.db).
		Where("tank_id = ?", tankID).
		Order("created_at desc").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
