package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// Deps groups the storage ports the ledger writes through.
type Deps struct {
	Tx             ports.TxManager
	Tanks          ports.TankRepository
	Stock          ports.StockRepository
	Sales          ports.SaleRepository
	PaymentMethods ports.PaymentMethodRepository
	Shifts         ports.ShiftRepository
}

// Service is the inventory ledger. Every level mutation locks the tank row
// inside a transaction, except CompareAndSwapLevel which relies on the
// version column instead.
type Service struct {
	tx             ports.TxManager
	tanks          ports.TankRepository
	stock          ports.StockRepository
	sales          ports.SaleRepository
	paymentMethods ports.PaymentMethodRepository
	shifts         ports.ShiftRepository
	mq             queue.MessageQueue
	tracer         trace.Tracer
	log            *zap.Logger
	now            func() time.Time
}

func NewService(deps Deps, mq queue.MessageQueue, log *zap.Logger) ports.InventoryService {
	return &Service{
		tx:             deps.Tx,
		tanks:          deps.Tanks,
		stock:          deps.Stock,
		sales:          deps.Sales,
		paymentMethods: deps.PaymentMethods,
		shifts:         deps.Shifts,
		mq:             mq,
		tracer:         telemetry.Tracer("sigec-posto/inventory"),
		log:            log,
		now:            time.Now,
	}
}

func (s *Service) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	tank, err := s.tanks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tank == nil {
		return nil, fmt.Errorf("tank %s: %w", id, domain.ErrNotFound)
	}
	return tank, nil
}

func (s *Service) ListTanks(ctx context.Context, stationID string) ([]domain.Tank, error) {
	return s.tanks.FindActive(ctx, stationID)
}

func (s *Service) DecrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error) {
	ctx, span := s.startSpan(ctx, "DecrementLevel", tankID)
	defer span.End()

	if !quantity.IsPositive() {
		return nil, s.fail(span, "decrement", domain.ErrInvalidQuantity)
	}

	var tank *domain.Tank
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		tank, err = s.applyLocked(ctx, tankID, movement{kind: domain.MovementKindSale}, func(t *domain.Tank) (decimal.Decimal, error) {
			return decrement(t, quantity)
		})
		return err
	})
	if err != nil {
		return nil, s.fail(span, "decrement", err)
	}

	s.committed("decrement", tank, domain.MovementKindSale)
	return tank, nil
}

func (s *Service) IncrementLevel(ctx context.Context, tankID string, quantity decimal.Decimal) (*domain.Tank, error) {
	ctx, span := s.startSpan(ctx, "IncrementLevel", tankID)
	defer span.End()

	if !quantity.IsPositive() {
		return nil, s.fail(span, "increment", domain.ErrInvalidQuantity)
	}

	var tank *domain.Tank
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		tank, err = s.applyLocked(ctx, tankID, movement{kind: domain.MovementKindDelivery}, func(t *domain.Tank) (decimal.Decimal, error) {
			return increment(t, quantity)
		})
		return err
	})
	if err != nil {
		return nil, s.fail(span, "increment", err)
	}

	s.committed("increment", tank, domain.MovementKindDelivery)
	return tank, nil
}

// AdjustLevel sets an absolute level after a physical dip measurement. The
// reason is stored on the movement and never interpreted.
func (s *Service) AdjustLevel(ctx context.Context, tankID string, newLevel decimal.Decimal, reason string) (*domain.Tank, error) {
	ctx, span := s.startSpan(ctx, "AdjustLevel", tankID)
	defer span.End()

	var tank *domain.Tank
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		mv := movement{kind: domain.MovementKindAdjustment, reason: reason}
		tank, err = s.applyLocked(ctx, tankID, mv, func(t *domain.Tank) (decimal.Decimal, error) {
			if err := t.CheckLevel(newLevel); err != nil {
				return decimal.Zero, err
			}
			return newLevel, nil
		})
		return err
	})
	if err != nil {
		return nil, s.fail(span, "adjust", err)
	}

	s.log.Info("Tank level adjusted",
		zap.String("tank_id", tankID),
		zap.String("level", newLevel.String()),
		zap.String("reason", reason),
	)
	s.committed("adjust", tank, domain.MovementKindAdjustment)
	return tank, nil
}

// CompareAndSwapLevel applies patch only if the stored version still equals
// expectedVersion. No row lock is taken.
func (s *Service) CompareAndSwapLevel(ctx context.Context, tankID string, expectedVersion int64, patch domain.TankPatch) (*domain.Tank, error) {
	ctx, span := s.startSpan(ctx, "CompareAndSwapLevel", tankID)
	defer span.End()

	current, err := s.tanks.FindByID(ctx, tankID)
	if err != nil {
		return nil, s.fail(span, "cas", err)
	}
	if current == nil {
		return nil, s.fail(span, "cas", fmt.Errorf("tank %s: %w", tankID, domain.ErrNotFound))
	}
	if current.Version != expectedVersion {
		return nil, s.fail(span, "cas", &domain.VersionConflictError{TankID: tankID, ExpectedVersion: expectedVersion})
	}

	next := patch.Apply(*current)
	if err := validatePatched(&next); err != nil {
		return nil, s.fail(span, "cas", err)
	}
	next.Version = expectedVersion + 1
	next.UpdatedAt = s.now()

	ok, err := s.tanks.CompareAndSwap(ctx, &next, expectedVersion)
	if err != nil {
		return nil, s.fail(span, "cas", fmt.Errorf("compare and swap tank %s: %w", tankID, err))
	}
	if !ok {
		return nil, s.fail(span, "cas", &domain.VersionConflictError{TankID: tankID, ExpectedVersion: expectedVersion})
	}

	s.committed("cas", &next, domain.MovementKindAdjustment)
	return &next, nil
}

// ReceiveDelivery writes the delivery record, the level increment and the
// movement in one transaction.
func (s *Service) ReceiveDelivery(ctx context.Context, req *ports.DeliveryRequest) (*ports.DeliveryResult, error) {
	ctx, span := s.startSpan(ctx, "ReceiveDelivery", req.TankID)
	defer span.End()

	if !req.Quantity.IsPositive() {
		return nil, s.fail(span, "delivery", domain.ErrInvalidQuantity)
	}

	now := s.now()
	deliveredAt := req.DeliveredAt
	if deliveredAt.IsZero() {
		deliveredAt = now
	}

	result := &ports.DeliveryResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		delivery := &domain.Delivery{
			ID:          uuid.New().String(),
			TankID:      req.TankID,
			Quantity:    req.Quantity,
			SupplierRef: req.SupplierRef,
			DeliveredAt: deliveredAt,
			CreatedBy:   req.CreatedBy,
			CreatedAt:   now,
		}

		mv := movement{
			kind:    domain.MovementKindDelivery,
			refType: "delivery",
			refID:   delivery.ID,
			by:      req.CreatedBy,
		}
		tank, err := s.applyLocked(ctx, req.TankID, mv, func(t *domain.Tank) (decimal.Decimal, error) {
			return increment(t, req.Quantity)
		})
		if err != nil {
			return err
		}

		delivery.StationID = tank.StationID
		if err := s.stock.SaveDelivery(ctx, delivery); err != nil {
			return fmt.Errorf("save delivery: %w", err)
		}

		result.Delivery = delivery
		result.Tank = tank
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "delivery", err)
	}

	s.log.Info("Delivery received",
		zap.String("tank_id", req.TankID),
		zap.String("delivery_id", result.Delivery.ID),
		zap.String("quantity", req.Quantity.String()),
	)
	s.committed("delivery", result.Tank, domain.MovementKindDelivery)
	return result, nil
}

// RecordSale stores a pump sale against an OPEN shift and draws the volume
// from the tank in the same transaction.
func (s *Service) RecordSale(ctx context.Context, req *ports.SaleRequest) (*ports.SaleResult, error) {
	ctx, span := s.startSpan(ctx, "RecordSale", req.TankID)
	defer span.End()

	if !req.Volume.IsPositive() || req.UnitPrice.IsNegative() {
		return nil, s.fail(span, "sale", domain.ErrInvalidQuantity)
	}

	now := s.now()
	soldAt := req.SoldAt
	if soldAt.IsZero() {
		soldAt = now
	}

	sale := &domain.Sale{
		ID:        uuid.New().String(),
		ShiftID:   req.ShiftID,
		TankID:    req.TankID,
		Volume:    req.Volume,
		UnitPrice: req.UnitPrice,
		Total:     req.Volume.Mul(req.UnitPrice).Round(2),
		SoldAt:    soldAt,
		CreatedAt: now,
	}
	if err := s.attachPayments(ctx, sale, req.Payments); err != nil {
		return nil, s.fail(span, "sale", err)
	}

	result := &ports.SaleResult{Sale: sale}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		shift, err := s.shifts.FindByIDForShare(ctx, req.ShiftID)
		if err != nil {
			return fmt.Errorf("load shift %s: %w", req.ShiftID, err)
		}
		if shift == nil {
			return fmt.Errorf("shift %s: %w", req.ShiftID, domain.ErrNotFound)
		}
		if shift.Status != domain.ShiftStatusOpen {
			return &domain.InvalidStateError{
				Entity:  "shift",
				ID:      shift.ID,
				State:   string(shift.Status),
				Message: "sales can only be recorded on an open shift",
			}
		}

		mv := movement{kind: domain.MovementKindSale, refType: "sale", refID: sale.ID}
		tank, err := s.applyLocked(ctx, req.TankID, mv, func(t *domain.Tank) (decimal.Decimal, error) {
			return decrement(t, req.Volume)
		})
		if err != nil {
			return err
		}

		sale.StationID = tank.StationID
		if err := s.sales.Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		result.Tank = tank
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "sale", err)
	}

	s.committed("sale", result.Tank, domain.MovementKindSale)
	return result, nil
}

// attachPayments validates the payment split and builds the payment rows.
// A sale without payments is recorded as unpaid.
func (s *Service) attachPayments(ctx context.Context, sale *domain.Sale, payments []ports.SalePaymentRequest) error {
	if len(payments) == 0 {
		return nil
	}

	ids := make([]string, 0, len(payments))
	sum := decimal.Zero
	for _, p := range payments {
		if !p.Amount.IsPositive() {
			return domain.ErrInvalidQuantity
		}
		ids = append(ids, p.PaymentMethodID)
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(sale.Total) {
		return fmt.Errorf("payments total %s does not match sale total %s: %w",
			sum.String(), sale.Total.String(), domain.ErrInvalidQuantity)
	}

	known, err := s.paymentMethods.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load payment methods: %w", err)
	}
	exists := make(map[string]bool, len(known))
	for _, m := range known {
		exists[m.ID] = true
	}

	for _, p := range payments {
		if !exists[p.PaymentMethodID] {
			return &domain.UnknownPaymentMethodError{PaymentMethodID: p.PaymentMethodID}
		}
		sale.Payments = append(sale.Payments, domain.SalePayment{
			ID:              uuid.New().String(),
			SaleID:          sale.ID,
			PaymentMethodID: p.PaymentMethodID,
			Amount:          p.Amount,
		})
	}
	return nil
}

type movement struct {
	kind    domain.MovementKind
	refType string
	refID   string
	reason  string
	by      string
}

// applyLocked must run inside a transaction. It locks the tank row, asks
// change for the new level, then writes the level, the bumped version and a
// movement record.
func (s *Service) applyLocked(ctx context.Context, tankID string, mv movement, change func(t *domain.Tank) (decimal.Decimal, error)) (*domain.Tank, error) {
	tank, err := s.tanks.FindByIDForUpdate(ctx, tankID)
	if err != nil {
		return nil, fmt.Errorf("lock tank %s: %w", tankID, err)
	}
	if tank == nil {
		return nil, fmt.Errorf("tank %s: %w", tankID, domain.ErrNotFound)
	}

	before := tank.CurrentLevel
	next, err := change(tank)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tank.CurrentLevel = next
	tank.Version++
	tank.UpdatedAt = now
	if err := s.tanks.UpdateLevel(ctx, tank); err != nil {
		return nil, fmt.Errorf("update tank %s: %w", tankID, err)
	}

	err = s.stock.SaveMovement(ctx, &domain.StockMovement{
		ID:            uuid.New().String(),
		TankID:        tankID,
		Kind:          mv.kind,
		Quantity:      next.Sub(before),
		LevelBefore:   before,
		LevelAfter:    next,
		ReferenceType: mv.refType,
		ReferenceID:   mv.refID,
		Reason:        mv.reason,
		CreatedBy:     mv.by,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("save movement: %w", err)
	}
	return tank, nil
}

func decrement(t *domain.Tank, quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.GreaterThan(t.CurrentLevel) {
		return decimal.Zero, &domain.InsufficientStockError{
			TankID:    t.ID,
			Requested: quantity,
			Available: t.CurrentLevel,
		}
	}
	return t.CurrentLevel.Sub(quantity), nil
}

func increment(t *domain.Tank, quantity decimal.Decimal) (decimal.Decimal, error) {
	next := t.CurrentLevel.Add(quantity)
	if next.GreaterThan(t.Capacity) {
		return decimal.Zero, &domain.CapacityExceededError{
			TankID:   t.ID,
			Current:  t.CurrentLevel,
			Delta:    quantity,
			Capacity: t.Capacity,
		}
	}
	return next, nil
}

func validatePatched(t *domain.Tank) error {
	if !t.Capacity.IsPositive() {
		return &domain.InvalidLevelError{TankID: t.ID, Level: t.CurrentLevel, Capacity: t.Capacity}
	}
	if err := t.CheckLevel(t.CurrentLevel); err != nil {
		return err
	}
	// A full tank must never read as low stock.
	if t.LowThreshold.IsNegative() || !t.LowThreshold.LessThan(t.Capacity) {
		return &domain.InvalidThresholdError{TankID: t.ID, Threshold: t.LowThreshold, Capacity: t.Capacity}
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, op, tankID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "inventory."+op, trace.WithAttributes(attribute.String("tank.id", tankID)))
}

// fail records err on the span and the ledger metrics, then returns it.
func (s *Service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	telemetry.LedgerOperationsTotal.WithLabelValues(op, "error").Inc()

	var (
		insufficient *domain.InsufficientStockError
		capacity     *domain.CapacityExceededError
		level        *domain.InvalidLevelError
		conflict     *domain.VersionConflictError
	)
	switch {
	case errors.As(err, &insufficient):
		telemetry.StockRejectionsTotal.WithLabelValues("insufficient_stock").Inc()
	case errors.As(err, &capacity):
		telemetry.StockRejectionsTotal.WithLabelValues("capacity_exceeded").Inc()
	case errors.As(err, &level):
		telemetry.StockRejectionsTotal.WithLabelValues("invalid_level").Inc()
	case errors.As(err, &conflict):
		telemetry.VersionConflictsTotal.Inc()
	default:
		if !domain.IsValidation(err) && !domain.IsNotFound(err) {
			s.log.Error("Ledger operation failed", zap.String("op", op), zap.Error(err))
		}
	}
	return err
}

// committed runs after a successful commit: metrics, gauge and the
// level-changed event. Publishing is best effort.
func (s *Service) committed(op string, tank *domain.Tank, kind domain.MovementKind) {
	telemetry.LedgerOperationsTotal.WithLabelValues(op, "ok").Inc()
	level, _ := tank.CurrentLevel.Float64()
	telemetry.TankLevelLitres.WithLabelValues(tank.StationID, tank.ID).Set(level)

	if s.mq == nil {
		return
	}
	event := queue.LevelChangedEvent{
		TankID:     tank.ID,
		StationID:  tank.StationID,
		Kind:       kind,
		Level:      tank.CurrentLevel,
		Version:    tank.Version,
		OccurredAt: s.now(),
	}
	if err := queue.PublishJSON(s.mq, queue.SubjectLevelChanged, event); err != nil {
		s.log.Warn("Failed to publish level change",
			zap.String("tank_id", tank.ID),
			zap.Error(err),
		)
	}
}
