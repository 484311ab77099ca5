package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// EngineDeps lists the read models the rules are evaluated against.
type EngineDeps struct {
	Alerts      ports.AlertService
	// AlertRepo, when set, is used to count active alerts around a sweep so
	// the before/after delta never reads a cached count.
	AlertRepo   ports.AlertRepository
	Tanks       ports.TankRepository
	Shifts      ports.ShiftRepository
	Registers   ports.CashRegisterRepository
	Sales       ports.SaleRepository
	Clients     ports.ClientRepository
	Maintenance ports.MaintenanceRepository
}

// Engine turns rule decisions into alerts. It deduplicates through
// HasActiveAlert and auto-resolves the conditions that can clear.
type Engine struct {
	alerts      ports.AlertService
	alertRepo   ports.AlertRepository
	tanks       ports.TankRepository
	shifts      ports.ShiftRepository
	registers   ports.CashRegisterRepository
	sales       ports.SaleRepository
	clients     ports.ClientRepository
	maintenance ports.MaintenanceRepository
	th          *domain.AlertThresholds
	log         *zap.Logger
	now         func() time.Time
}

func NewEngine(deps EngineDeps, thresholds *domain.AlertThresholds, log *zap.Logger) *Engine {
	if thresholds == nil {
		thresholds = domain.DefaultAlertThresholds()
	}
	return &Engine{
		alerts:      deps.Alerts,
		alertRepo:   deps.AlertRepo,
		tanks:       deps.Tanks,
		shifts:      deps.Shifts,
		registers:   deps.Registers,
		sales:       deps.Sales,
		clients:     deps.Clients,
		maintenance: deps.Maintenance,
		th:          thresholds,
		log:         log,
		now:         time.Now,
	}
}

var _ ports.AlertEngine = (*Engine)(nil)

func (e *Engine) countActive(ctx context.Context) (int64, error) {
	if e.alertRepo != nil {
		return e.alertRepo.CountActive(ctx, "")
	}
	return e.alerts.CountActive(ctx, "")
}

func (e *Engine) CheckLowStock(ctx context.Context, tank *domain.Tank) (bool, error) {
	if d := LowStock(tank, e.th); d != nil {
		return e.raise(ctx, tank.StationID, domain.AlertTypeLowStock, domain.EntityTank, tank.ID, d)
	}
	if LowStockCleared(tank) {
		e.autoResolve(ctx, tank.StationID, domain.AlertTypeLowStock, tank.ID)
	}
	return false, nil
}

func (e *Engine) CheckShiftDuration(ctx context.Context, shift *domain.Shift) (bool, error) {
	d := ShiftDuration(shift, e.th, e.now())
	if d == nil {
		return false, nil
	}
	return e.raise(ctx, shift.StationID, domain.AlertTypeShiftOpenTooLong, domain.EntityShift, shift.ID, d)
}

func (e *Engine) CheckCashVariance(ctx context.Context, register *domain.CashRegister) (bool, error) {
	d := CashVariance(register, e.th)
	if d == nil {
		return false, nil
	}
	return e.raise(ctx, register.StationID, domain.AlertTypeCashVariance, domain.EntityCashRegister, register.ID, d)
}

func (e *Engine) CheckIndexVariance(ctx context.Context, shift *domain.Shift) (bool, error) {
	if shift.MeterIndexEnd == nil {
		return false, nil
	}

	sales, err := e.sales.FindByShiftID(ctx, shift.ID)
	if err != nil {
		return false, fmt.Errorf("load sales for shift %s: %w", shift.ID, err)
	}
	sold := decimal.Zero
	for _, s := range sales {
		sold = sold.Add(s.Volume)
	}

	d := IndexVariance(shift, sold, e.th)
	if d == nil {
		return false, nil
	}
	return e.raise(ctx, shift.StationID, domain.AlertTypeIndexVariance, domain.EntityShift, shift.ID, d)
}

func (e *Engine) CheckCreditLimit(ctx context.Context, client *domain.Client) (bool, error) {
	if d := CreditLimit(client, e.th); d != nil {
		return e.raise(ctx, client.StationID, domain.AlertTypeCreditLimit, domain.EntityClient, client.ID, d)
	}
	if CreditCleared(client, e.th) {
		e.autoResolve(ctx, client.StationID, domain.AlertTypeCreditLimit, client.ID)
	}
	return false, nil
}

func (e *Engine) CheckMaintenance(ctx context.Context, schedule *domain.MaintenanceSchedule) (bool, error) {
	d := Maintenance(schedule, e.th, e.now())
	if d == nil {
		return false, nil
	}
	return e.raise(ctx, schedule.StationID, domain.AlertTypeMaintenanceDue, domain.EntityMaintenance, schedule.ID, d)
}

// raise creates the alert unless an ACTIVE one already exists for the same
// (station, type, entity). Losing a creation race to another replica is not
// an error.
func (e *Engine) raise(ctx context.Context, stationID string, alertType domain.AlertType, entityType, entityID string, d *Decision) (bool, error) {
	exists, err := e.alerts.HasActiveAlert(ctx, stationID, alertType, &entityID)
	if err != nil {
		return false, fmt.Errorf("check active %s alert for %s: %w", alertType, entityID, err)
	}
	if exists {
		return false, nil
	}

	_, err = e.alerts.Create(ctx, &ports.CreateAlertInput{
		StationID:     stationID,
		Type:          alertType,
		Priority:      d.Priority,
		Title:         d.Title,
		Message:       d.Message,
		RelatedEntity: &domain.EntityRef{Type: entityType, ID: entityID},
	})
	if errors.Is(err, domain.ErrDuplicateActiveAlert) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) autoResolve(ctx context.Context, stationID string, alertType domain.AlertType, entityID string) {
	if _, err := e.alerts.AutoResolveByEntity(ctx, stationID, alertType, entityID); err != nil {
		e.log.Warn("Auto-resolve failed",
			zap.String("type", string(alertType)),
			zap.String("related_entity_id", entityID),
			zap.Error(err),
		)
	}
}

// RunAllChecks evaluates every rule against every candidate entity. A failing
// entity is logged and counted but never stops the sweep. The only error
// returned is a failure to read the active count before starting.
func (e *Engine) RunAllChecks(ctx context.Context) (*ports.RunResult, error) {
	start := e.now()

	before, err := e.countActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active alerts before sweep: %w", err)
	}

	res := &ports.RunResult{}
	sw := &sweep{engine: e, res: res}

	if tanks, err := e.tanks.FindActive(ctx, ""); sw.loaded("tanks", err) {
		for i := range tanks {
			t := &tanks[i]
			sw.run("low_stock", t.ID, func() (bool, error) { return e.CheckLowStock(ctx, t) })
		}
	}

	if shifts, err := e.shifts.FindOpen(ctx); sw.loaded("open shifts", err) {
		for i := range shifts {
			s := &shifts[i]
			sw.run("shift_duration", s.ID, func() (bool, error) { return e.CheckShiftDuration(ctx, s) })
		}
	}

	since := start.Add(-e.th.VarianceLookback)
	if shifts, err := e.shifts.FindClosedSince(ctx, since); sw.loaded("closed shifts", err) {
		for i := range shifts {
			s := &shifts[i]
			sw.run("index_variance", s.ID, func() (bool, error) { return e.CheckIndexVariance(ctx, s) })
		}
	}

	if registers, err := e.registers.FindClosedSince(ctx, since); sw.loaded("cash registers", err) {
		for i := range registers {
			r := &registers[i]
			sw.run("cash_variance", r.ID, func() (bool, error) { return e.CheckCashVariance(ctx, r) })
		}
	}

	if clients, err := e.clients.FindWithCreditLimit(ctx); sw.loaded("clients", err) {
		for i := range clients {
			c := &clients[i]
			sw.run("credit_limit", c.ID, func() (bool, error) { return e.CheckCreditLimit(ctx, c) })
		}
	}

	until := start.Add(e.th.MaintenanceLookahead)
	if schedules, err := e.maintenance.FindPendingBefore(ctx, until); sw.loaded("maintenance", err) {
		for i := range schedules {
			m := &schedules[i]
			sw.run("maintenance", m.ID, func() (bool, error) { return e.CheckMaintenance(ctx, m) })
		}
	}

	after, err := e.countActive(ctx)
	if err != nil {
		e.log.Warn("Failed to count active alerts after sweep", zap.Error(err))
		after = before
	}
	if delta := after - before; delta > 0 {
		res.AlertsCreated = delta
	}

	res.Duration = e.now().Sub(start)
	telemetry.SweepDuration.Observe(res.Duration.Seconds())

	e.log.Info("Alert sweep finished",
		zap.Int("checks_run", res.ChecksRun),
		zap.Int64("alerts_created", res.AlertsCreated),
		zap.Int("failures", res.Failures),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

type sweep struct {
	engine *Engine
	res    *ports.RunResult
}

// loaded reports whether a candidate list was read; a failed read counts as
// one failure and skips that family of checks.
func (s *sweep) loaded(what string, err error) bool {
	if err == nil {
		return true
	}
	s.res.Failures++
	telemetry.SweepFailuresTotal.WithLabelValues("load").Inc()
	s.engine.log.Error("Failed to load sweep candidates", zap.String("what", what), zap.Error(err))
	return false
}

func (s *sweep) run(check, entityID string, fn func() (bool, error)) {
	s.res.ChecksRun++

	defer func() {
		if r := recover(); r != nil {
			s.res.Failures++
			telemetry.SweepFailuresTotal.WithLabelValues(check).Inc()
			s.engine.log.Error("Check panicked",
				zap.String("check", check),
				zap.String("entity_id", entityID),
				zap.Any("panic", r),
			)
		}
	}()

	if _, err := fn(); err != nil {
		s.res.Failures++
		telemetry.SweepFailuresTotal.WithLabelValues(check).Inc()
		s.engine.log.Warn("Check failed",
			zap.String("check", check),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
