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

type ClientRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewClientRepository(db *gorm.DB, log *zap.Logger) ports.ClientRepository {
	return &ClientRepository{
		db:  db,
		log: log,
	}
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	err := conn(ctx, r.db).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) FindWithCreditLimit(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	err := conn(ctx, r.db).
		Where("active = ? AND credit_limit > 0", true).
		Find(&clients).Error
	return clients, err
}

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) ports.MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) FindPendingBefore(ctx context.Context, until time.Time) ([]domain.MaintenanceSchedule, error) {
	var schedules []domain.MaintenanceSchedule
	err := conn(ctx, r.db).
		Where("completed_at IS NULL AND scheduled_at <= ?", until).
		Order("scheduled_at").
		Find(&schedules).Error
	return schedules, err
}
