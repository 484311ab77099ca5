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

type AlertRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAlertRepository(db *gorm.DB, log *zap.Logger) ports.AlertRepository {
	return &AlertRepository{
		db:  db,
		log: log,
	}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	err := conn(ctx, r.db).Create(alert).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateActiveAlert
	}
	return err
}

func (r *AlertRepository) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	var alert domain.Alert
	err := conn(ctx, r.db).First(&alert, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) Transition(ctx context.Context, alert *domain.Alert, from domain.AlertStatus) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Alert{}).
		Where("id = ? AND status = ?", alert.ID, from).
		Updates(map[string]interface{}{
			"status":          alert.Status,
			"acknowledged_at": alert.AcknowledgedAt,
			"acknowledged_by": alert.AcknowledgedBy,
			"resolved_at":     alert.ResolvedAt,
			"resolved_by":     alert.ResolvedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AlertRepository) ExistsActive(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
	q := conn(ctx, r.db).Model(&domain.Alert{}).
		Where("station_id = ? AND type = ? AND status = ?", stationID, alertType, domain.AlertStatusActive)
	if relatedEntityID != nil {
		q = q.Where("related_entity_id = ?", *relatedEntityID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AlertRepository) ResolveActiveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string, at time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&domain.Alert{}).
		Where("station_id = ? AND type = ? AND related_entity_id = ? AND status IN ?",
			stationID, alertType, relatedEntityID,
			[]domain.AlertStatus{domain.AlertStatusActive, domain.AlertStatusAcknowledged}).
		Updates(map[string]interface{}{
			"status":      domain.AlertStatusResolved,
			"resolved_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *AlertRepository) CountActive(ctx context.Context, stationID string) (int64, error) {
	q := conn(ctx, r.db).Model(&domain.Alert{}).Where("status = ?", domain.AlertStatusActive)
	if stationID != "" {
		q = q.Where("station_id = ?", stationID)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	q := conn(ctx, r.db)
	if filter.StationID != "" {
		q = q.Where("station_id = ?", filter.StationID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var alerts []domain.Alert
	err := q.Order("triggered_at desc").Limit(limit).Offset(filter.Offset).Find(&alerts).Error
	return alerts, err
}
