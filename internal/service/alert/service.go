package alert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

const (
	countKeyPrefix   = "alerts:active:"
	countKeyAll      = countKeyPrefix + "*"
	defaultCountTTL  = 30 * time.Second
	defaultListLimit = 100
)

// Service is the alert store. It owns the alert state machine but performs
// no deduplication on Create; the trigger engine checks HasActiveAlert first.
type Service struct {
	repo     ports.AlertRepository
	users    ports.UserRepository
	cache    ports.Cache
	mq       queue.MessageQueue
	log      *zap.Logger
	countTTL time.Duration
	now      func() time.Time
}

// NewService wires the store. cache and mq may be nil.
func NewService(repo ports.AlertRepository, users ports.UserRepository, cache ports.Cache, mq queue.MessageQueue, countTTL time.Duration, log *zap.Logger) *Service {
	if countTTL <= 0 {
		countTTL = defaultCountTTL
	}
	return &Service{
		repo:     repo,
		users:    users,
		cache:    cache,
		mq:       mq,
		log:      log,
		countTTL: countTTL,
		now:      time.Now,
	}
}

var _ ports.AlertService = (*Service)(nil)

func (s *Service) Create(ctx context.Context, input *ports.CreateAlertInput) (*domain.Alert, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown alert type %q: %w", input.Type, domain.ErrInvalidAlert)
	}
	if input.Priority.Rank() == 0 {
		return nil, fmt.Errorf("unknown alert priority %q: %w", input.Priority, domain.ErrInvalidAlert)
	}
	if input.StationID == "" {
		return nil, fmt.Errorf("station is required: %w", domain.ErrInvalidAlert)
	}

	alert := &domain.Alert{
		ID:          uuid.New().String(),
		StationID:   input.StationID,
		Type:        input.Type,
		Priority:    input.Priority,
		Status:      domain.AlertStatusActive,
		Title:       input.Title,
		Message:     input.Message,
		TriggeredAt: s.now(),
	}
	if ref := input.RelatedEntity; ref != nil {
		entityType, entityID := ref.Type, ref.ID
		alert.RelatedEntityType = &entityType
		alert.RelatedEntityID = &entityID
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		if errors.Is(err, domain.ErrDuplicateActiveAlert) {
			return nil, err
		}
		return nil, fmt.Errorf("create alert: %w", err)
	}

	telemetry.AlertsCreatedTotal.WithLabelValues(string(alert.Type), string(alert.Priority)).Inc()
	s.log.Info("Alert created",
		zap.String("alert_id", alert.ID),
		zap.String("station_id", alert.StationID),
		zap.String("type", string(alert.Type)),
		zap.String("priority", string(alert.Priority)),
	)

	s.invalidateCounts(ctx, alert.StationID)
	s.publish(queue.SubjectAlertCreated, alert)
	return alert, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return alert, nil
}

func (s *Service) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.List(ctx, filter)
}

// HasActiveAlert reports whether an ACTIVE alert matches. A nil
// relatedEntityID matches any related entity.
func (s *Service) HasActiveAlert(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
	return s.repo.ExistsActive(ctx, stationID, alertType, relatedEntityID)
}

func (s *Service) Acknowledge(ctx context.Context, id, userID string) (*domain.Alert, error) {
	return s.transition(ctx, id, domain.AlertStatusAcknowledged, &userID)
}

func (s *Service) Resolve(ctx context.Context, id, userID string) (*domain.Alert, error) {
	return s.transition(ctx, id, domain.AlertStatusResolved, &userID)
}

func (s *Service) Ignore(ctx context.Context, id string) (*domain.Alert, error) {
	return s.transition(ctx, id, domain.AlertStatusIgnored, nil)
}

func (s *Service) transition(ctx context.Context, id string, next domain.AlertStatus, userID *string) (*domain.Alert, error) {
	alert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		user, err := s.users.FindByID(ctx, *userID)
		if err != nil {
			return nil, fmt.Errorf("load user %s: %w", *userID, err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %s: %w", *userID, domain.ErrInvalidActor)
		}
	}

	if !alert.CanTransition(next) {
		return nil, &domain.InvalidStateError{
			Entity:  "alert",
			ID:      alert.ID,
			State:   string(alert.Status),
			Message: "cannot move to " + string(next),
		}
	}

	from := alert.Status
	now := s.now()
	alert.Status = next
	switch next {
	case domain.AlertStatusAcknowledged:
		alert.AcknowledgedAt = &now
		alert.AcknowledgedBy = userID
	case domain.AlertStatusResolved:
		alert.ResolvedAt = &now
		alert.ResolvedBy = userID
	}

	ok, err := s.repo.Transition(ctx, alert, from)
	if err != nil {
		return nil, fmt.Errorf("update alert %s: %w", id, err)
	}
	if !ok {
		// Someone else moved the alert after it was read.
		state := "unknown"
		if current, err := s.repo.FindByID(ctx, id); err == nil && current != nil {
			state = string(current.Status)
		}
		return nil, &domain.InvalidStateError{
			Entity:  "alert",
			ID:      id,
			State:   state,
			Message: "changed concurrently, cannot move to " + string(next),
		}
	}
	if next == domain.AlertStatusResolved {
		telemetry.AlertsResolvedTotal.WithLabelValues(string(alert.Type), "manual").Inc()
	}

	s.log.Info("Alert status changed",
		zap.String("alert_id", alert.ID),
		zap.String("status", string(next)),
	)

	s.invalidateCounts(ctx, alert.StationID)
	s.publish(queue.SubjectAlertUpdated, alert)
	return alert, nil
}

// AutoResolveByEntity resolves every ACTIVE or ACKNOWLEDGED alert of the
// given type for one entity, with no actor.
func (s *Service) AutoResolveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string) (int64, error) {
	n, err := s.repo.ResolveActiveByEntity(ctx, stationID, alertType, relatedEntityID, s.now())
	if err != nil {
		return 0, fmt.Errorf("auto-resolve %s alerts for %s: %w", alertType, relatedEntityID, err)
	}
	if n == 0 {
		return 0, nil
	}

	telemetry.AlertsResolvedTotal.WithLabelValues(string(alertType), "auto").Add(float64(n))
	s.log.Info("Alerts auto-resolved",
		zap.String("station_id", stationID),
		zap.String("type", string(alertType)),
		zap.String("related_entity_id", relatedEntityID),
		zap.Int64("count", n),
	)

	s.invalidateCounts(ctx, stationID)
	return n, nil
}

// CountActive counts ACTIVE alerts for a station, or for every station when
// stationID is empty. Results are cached for a short TTL.
func (s *Service) CountActive(ctx context.Context, stationID string) (int64, error) {
	key := countKey(stationID)

	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			if n, perr := strconv.ParseInt(val, 10, 64); perr == nil {
				return n, nil
			}
		case !errors.Is(err, ports.ErrCacheMiss):
			s.log.Warn("Alert count cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	n, err := s.repo.CountActive(ctx, stationID)
	if err != nil {
		return 0, fmt.Errorf("count active alerts: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(n, 10), s.countTTL); err != nil {
			s.log.Warn("Alert count cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return n, nil
}

func countKey(stationID string) string {
	if stationID == "" {
		return countKeyAll
	}
	return countKeyPrefix + stationID
}

func (s *Service) invalidateCounts(ctx context.Context, stationID string) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{countKey(stationID), countKeyAll} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("Alert count cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Service) publish(subject string, alert *domain.Alert) {
	if s.mq == nil {
		return
	}
	event := queue.AlertEvent{Alert: *alert, OccurredAt: s.now()}
	if err := queue.PublishJSON(s.mq, subject, event); err != nil {
		s.log.Warn("Failed to publish alert event",
			zap.String("subject", subject),
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
	}
}
