package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type SaleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSaleRepository(db *gorm.DB, log *zap.Logger) ports.SaleRepository {
	return &SaleRepository{
		db:  db,
		log: log,
	}
}

func (r *SaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	return conn(ctx, r.db).Create(sale).Error
}

func (r *SaleRepository) FindByShiftID(ctx context.Context, shiftID string) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := conn(ctx, r.db).
		Preload("Payments").
		Where("shift_id = ?", shiftID).
		Order("sold_at").
		Find(&sales).Error
	return sales, err
}

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) ports.PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var methods []domain.PaymentMethod
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&methods).Error
	return methods, err
}
