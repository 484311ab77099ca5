package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// Service moves shifts through OPEN -> CLOSED -> VALIDATED. Opening shifts
// belongs to the point-of-sale front end.
type Service struct {
	tx        ports.TxManager
	repo      ports.ShiftRepository
	registers ports.CashRegisterRepository
	users     ports.UserRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewService(tx ports.TxManager, repo ports.ShiftRepository, registers ports.CashRegisterRepository, users ports.UserRepository, log *zap.Logger) ports.ShiftService {
	return &Service{
		tx:        tx,
		repo:      repo,
		registers: registers,
		users:     users,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %s: %w", id, domain.ErrNotFound)
	}
	return shift, nil
}

func (s *Service) getForUpdate(ctx context.Context, id string) (*domain.Shift, error) {
	shift, err := s.repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %s: %w", id, domain.ErrNotFound)
	}
	return shift, nil
}

// Close records the end meter index and moves an OPEN shift to CLOSED.
func (s *Service) Close(ctx context.Context, id string, meterIndexEnd decimal.Decimal) (*domain.Shift, error) {
	var shift *domain.Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.getForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if shift.Status != domain.ShiftStatusOpen {
			return &domain.InvalidStateError{Entity: "shift", ID: id, State: string(shift.Status), Message: "only an open shift can be closed"}
		}
		if meterIndexEnd.LessThan(shift.MeterIndexStart) {
			return fmt.Errorf("end index %s is below start index %s: %w",
				meterIndexEnd.String(), shift.MeterIndexStart.String(), domain.ErrInvalidQuantity)
		}

		now := s.now()
		shift.Status = domain.ShiftStatusClosed
		shift.ClosedAt = &now
		shift.MeterIndexEnd = &meterIndexEnd
		shift.UpdatedAt = now
		return s.repo.Update(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Shift closed",
		zap.String("shift_id", id),
		zap.String("meter_volume", shift.MeterVolume().String()),
	)
	return shift, nil
}

// Validate finalizes a CLOSED shift whose cash register exists.
func (s *Service) Validate(ctx context.Context, id, userID string) (*domain.Shift, error) {
	var shift *domain.Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.getForUpdate(ctx, id)
		if err != nil {
			return err
		}

		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user %s: %w", userID, err)
		}
		if user == nil {
			return fmt.Errorf("user %s: %w", userID, domain.ErrInvalidActor)
		}

		if shift.Status != domain.ShiftStatusClosed {
			return &domain.InvalidStateError{Entity: "shift", ID: id, State: string(shift.Status), Message: "only a closed shift can be validated"}
		}
		reconciled, err := s.registers.ExistsForShift(ctx, id)
		if err != nil {
			return fmt.Errorf("check register for shift %s: %w", id, err)
		}
		if !reconciled {
			return &domain.InvalidStateError{Entity: "shift", ID: id, State: string(shift.Status), Message: "cash register must be closed first"}
		}

		now := s.now()
		shift.Status = domain.ShiftStatusValidated
		shift.ValidatedAt = &now
		shift.ValidatedBy = &userID
		shift.UpdatedAt = now
		return s.repo.Update(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Shift validated", zap.String("shift_id", id), zap.String("validated_by", userID))
	return shift, nil
}
