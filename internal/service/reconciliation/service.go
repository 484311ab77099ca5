package reconciliation

import (
	"context"
	"fmt"
	"sort"
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

const debtStatusOpen = "OPEN"

type Deps struct {
	Tx             ports.TxManager
	Shifts         ports.ShiftRepository
	Sales          ports.SaleRepository
	PaymentMethods ports.PaymentMethodRepository
	Registers      ports.CashRegisterRepository
	Debts          ports.DebtLedger
}

// Service closes a shift's cash register exactly once. The register, its
// details and the optional attendant debt commit in a single transaction.
type Service struct {
	tx             ports.TxManager
	shifts         ports.ShiftRepository
	sales          ports.SaleRepository
	paymentMethods ports.PaymentMethodRepository
	registers      ports.CashRegisterRepository
	debts          ports.DebtLedger
	mq             queue.MessageQueue
	tracer         trace.Tracer
	log            *zap.Logger
	now            func() time.Time
}

func NewService(deps Deps, mq queue.MessageQueue, log *zap.Logger) ports.ReconciliationService {
	return &Service{
		tx:             deps.Tx,
		shifts:         deps.Shifts,
		sales:          deps.Sales,
		paymentMethods: deps.PaymentMethods,
		registers:      deps.Registers,
		debts:          deps.Debts,
		mq:             mq,
		tracer:         telemetry.Tracer("sigec-posto/reconciliation"),
		log:            log,
		now:            time.Now,
	}
}

func (s *Service) GetByShift(ctx context.Context, shiftID string) (*domain.CashRegister, error) {
	register, err := s.registers.FindByShiftID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, fmt.Errorf("cash register for shift %s: %w", shiftID, domain.ErrNotFound)
	}
	return register, nil
}

func (s *Service) Close(ctx context.Context, req *ports.CloseRequest) (*ports.CloseResult, error) {
	ctx, span := s.tracer.Start(ctx, "reconciliation.Close",
		trace.WithAttributes(attribute.String("shift.id", req.ShiftID)))
	defer span.End()

	var result *ports.CloseResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.close(ctx, req)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.ReconciliationsTotal.WithLabelValues(resultLabel(err)).Inc()
		if !domain.IsValidation(err) && !domain.IsConflict(err) && !domain.IsNotFound(err) {
			s.log.Error("Cash register close failed", zap.String("shift_id", req.ShiftID), zap.Error(err))
		}
		return nil, err
	}

	reg := result.Register
	telemetry.ReconciliationsTotal.WithLabelValues("ok").Inc()
	abs, _ := reg.Variance.Abs().Float64()
	telemetry.ReconciliationVariance.Observe(abs)

	s.log.Info("Cash register closed",
		zap.String("shift_id", reg.ShiftID),
		zap.String("register_id", reg.ID),
		zap.String("expected", reg.ExpectedTotal.StringFixed(2)),
		zap.String("actual", reg.ActualTotal.StringFixed(2)),
		zap.String("variance", reg.Variance.StringFixed(2)),
		zap.Bool("debt_created", result.DebtCreated),
	)

	if s.mq != nil {
		event := queue.RegisterClosedEvent{
			RegisterID: reg.ID,
			ShiftID:    reg.ShiftID,
			StationID:  reg.StationID,
			Variance:   reg.Variance,
			OccurredAt: s.now(),
		}
		if err := queue.PublishJSON(s.mq, queue.SubjectRegisterClosed, event); err != nil {
			s.log.Warn("Failed to publish register close", zap.String("register_id", reg.ID), zap.Error(err))
		}
	}
	return result, nil
}

// close runs inside the transaction.
func (s *Service) close(ctx context.Context, req *ports.CloseRequest) (*ports.CloseResult, error) {
	shift, err := s.shifts.FindByIDForUpdate(ctx, req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("load shift %s: %w", req.ShiftID, err)
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %s: %w", req.ShiftID, domain.ErrNotFound)
	}
	if err := checkClosable(shift); err != nil {
		return nil, err
	}

	exists, err := s.registers.ExistsForShift(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("check register for shift %s: %w", shift.ID, err)
	}
	if exists {
		return nil, domain.ErrAlreadyReconciled
	}

	sales, err := s.sales.FindByShiftID(ctx, shift.ID)
	if err != nil {
		return nil, fmt.Errorf("load sales for shift %s: %w", shift.ID, err)
	}

	if err := s.checkMethods(ctx, req.Declared); err != nil {
		return nil, err
	}

	register := Compute(sales, req.Declared)
	register.ID = uuid.New().String()
	register.ShiftID = shift.ID
	register.StationID = shift.StationID
	register.VarianceNote = req.VarianceNote
	register.ClosedAt = s.now()
	register.ClosedBy = req.ClosedBy
	for i := range register.Details {
		register.Details[i].ID = uuid.New().String()
		register.Details[i].CashRegisterID = register.ID
	}

	if err := s.registers.Create(ctx, register); err != nil {
		return nil, err
	}

	result := &ports.CloseResult{Register: register}
	if req.CreateDebtOnNegativeVariance && register.Variance.IsNegative() {
		debt := &domain.PompisteDebt{
			ID:             uuid.New().String(),
			AttendantID:    shift.AttendantID,
			StationID:      shift.StationID,
			CashRegisterID: register.ID,
			Amount:         register.Variance.Abs(),
			Reason:         domain.DebtReasonCashVariance,
			Status:         debtStatusOpen,
			CreatedAt:      register.ClosedAt,
		}
		if err := s.debts.CreateDebt(ctx, debt); err != nil {
			return nil, fmt.Errorf("create attendant debt: %w", err)
		}
		result.DebtCreated = true
		result.Debt = debt
	}
	return result, nil
}

func checkClosable(shift *domain.Shift) error {
	switch shift.Status {
	case domain.ShiftStatusClosed:
		return nil
	case domain.ShiftStatusOpen:
		return &domain.InvalidStateError{Entity: "shift", ID: shift.ID, State: string(shift.Status), Message: "must close shift first"}
	case domain.ShiftStatusValidated:
		return &domain.InvalidStateError{Entity: "shift", ID: shift.ID, State: string(shift.Status), Message: "already finalized, immutable"}
	}
	return &domain.InvalidStateError{Entity: "shift", ID: shift.ID, State: string(shift.Status), Message: "unknown status"}
}

func (s *Service) checkMethods(ctx context.Context, declared []ports.DeclaredAmount) error {
	if len(declared) == 0 {
		return nil
	}
	ids := make([]string, 0, len(declared))
	for _, d := range declared {
		ids = append(ids, d.PaymentMethodID)
	}

	known, err := s.paymentMethods.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load payment methods: %w", err)
	}
	exists := make(map[string]bool, len(known))
	for _, m := range known {
		exists[m.ID] = true
	}
	for _, id := range ids {
		if !exists[id] {
			return &domain.UnknownPaymentMethodError{PaymentMethodID: id}
		}
	}
	return nil
}

// Compute derives totals and per-method lines from the shift's sales and the
// declared amounts. Lines cover the union of expected and declared methods,
// ordered by payment method id. Identifiers and timestamps are left empty.
func Compute(sales []domain.Sale, declared []ports.DeclaredAmount) *domain.CashRegister {
	expected := make(map[string]decimal.Decimal)
	actual := make(map[string]decimal.Decimal)

	expectedTotal := decimal.Zero
	for _, sale := range sales {
		expectedTotal = expectedTotal.Add(sale.Total)
		for _, p := range sale.Payments {
			expected[p.PaymentMethodID] = expected[p.PaymentMethodID].Add(p.Amount)
		}
	}

	actualTotal := decimal.Zero
	for _, d := range declared {
		actualTotal = actualTotal.Add(d.Amount)
		actual[d.PaymentMethodID] = actual[d.PaymentMethodID].Add(d.Amount)
	}

	methods := make([]string, 0, len(expected)+len(actual))
	for id := range expected {
		methods = append(methods, id)
	}
	for id := range actual {
		if _, ok := expected[id]; !ok {
			methods = append(methods, id)
		}
	}
	sort.Strings(methods)

	register := &domain.CashRegister{
		ExpectedTotal: expectedTotal,
		ActualTotal:   actualTotal,
		Variance:      actualTotal.Sub(expectedTotal),
	}
	for _, id := range methods {
		register.Details = append(register.Details, domain.PaymentDetail{
			PaymentMethodID: id,
			ExpectedAmount:  expected[id],
			ActualAmount:    actual[id],
			Variance:        actual[id].Sub(expected[id]),
		})
	}
	return register
}

func resultLabel(err error) string {
	switch {
	case domain.IsConflict(err):
		return "conflict"
	case domain.IsValidation(err):
		return "rejected"
	case domain.IsNotFound(err):
		return "not_found"
	}
	return "error"
}
