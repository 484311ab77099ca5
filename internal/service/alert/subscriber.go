package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

const handlerTimeout = 10 * time.Second

// Subscriber re-evaluates the affected rules as soon as the ledger or the
// reconciliation flow commits, so alerts do not wait for the next sweep.
type Subscriber struct {
	engine    ports.AlertEngine
	tanks     ports.TankRepository
	shifts    ports.ShiftRepository
	registers ports.CashRegisterRepository
	notifier  ports.AlertNotifier
	minNotify domain.AlertPriority
	log       *zap.Logger
}

func NewSubscriber(engine ports.AlertEngine, tanks ports.TankRepository, shifts ports.ShiftRepository, registers ports.CashRegisterRepository, log *zap.Logger) *Subscriber {
	return &Subscriber{
		engine:    engine,
		tanks:     tanks,
		shifts:    shifts,
		registers: registers,
		log:       log,
	}
}

// WithNotifier forwards newly created alerts of at least minPriority.
func (s *Subscriber) WithNotifier(n ports.AlertNotifier, minPriority domain.AlertPriority) *Subscriber {
	s.notifier = n
	s.minNotify = minPriority
	return s
}

// Register subscribes every handler on mq.
func (s *Subscriber) Register(mq queue.MessageQueue) error {
	subs := map[string]func([]byte) error{
		queue.SubjectLevelChanged:   s.HandleLevelChanged,
		queue.SubjectRegisterClosed: s.HandleRegisterClosed,
	}
	if s.notifier != nil {
		subs[queue.SubjectAlertCreated] = s.HandleAlertCreated
	}

	for subject, h := range subs {
		if err := mq.Subscribe(subject, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}
	return nil
}

func (s *Subscriber) HandleLevelChanged(data []byte) error {
	var ev queue.LevelChangedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode level change: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	tank, err := s.tanks.FindByID(ctx, ev.TankID)
	if err != nil {
		return fmt.Errorf("load tank %s: %w", ev.TankID, err)
	}
	if tank == nil {
		s.log.Warn("Level change for unknown tank", zap.String("tank_id", ev.TankID))
		return nil
	}

	_, err = s.engine.CheckLowStock(ctx, tank)
	return err
}

func (s *Subscriber) HandleRegisterClosed(data []byte) error {
	var ev queue.RegisterClosedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode register close: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	register, err := s.registers.FindByShiftID(ctx, ev.ShiftID)
	if err != nil {
		return fmt.Errorf("load register for shift %s: %w", ev.ShiftID, err)
	}
	if register != nil {
		if _, err := s.engine.CheckCashVariance(ctx, register); err != nil {
			s.log.Warn("Cash variance check failed", zap.String("shift_id", ev.ShiftID), zap.Error(err))
		}
	}

	shift, err := s.shifts.FindByID(ctx, ev.ShiftID)
	if err != nil {
		return fmt.Errorf("load shift %s: %w", ev.ShiftID, err)
	}
	if shift == nil {
		return nil
	}
	_, err = s.engine.CheckIndexVariance(ctx, shift)
	return err
}

func (s *Subscriber) HandleAlertCreated(data []byte) error {
	var ev queue.AlertEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode alert event: %w", err)
	}
	if ev.Alert.Priority.Rank() < s.minNotify.Rank() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	return s.notifier.NotifyAlert(ctx, &ev.Alert)
}
