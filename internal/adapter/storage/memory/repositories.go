package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

var errLockOutsideTx = errors.New("memory: row lock requested outside a transaction")

type tankRepo struct{ s *Store }

func (r tankRepo) FindByID(ctx context.Context, id string) (*domain.Tank, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.tanks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r tankRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Tank, error) {
	if !r.s.inTx(ctx) {
		return nil, errLockOutsideTx
	}
	return r.FindByID(ctx, id)
}

func (r tankRepo) FindActive(ctx context.Context, stationID string) ([]domain.Tank, error) {
	defer r.s.lock(ctx)()
	var out []domain.Tank
	for _, t := range r.s.tanks {
		if !t.Active || (stationID != "" && t.StationID != stationID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r tankRepo) UpdateLevel(ctx context.Context, tank *domain.Tank) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.tanks[tank.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CurrentLevel = tank.CurrentLevel
	stored.Version = tank.Version
	stored.UpdatedAt = tank.UpdatedAt
	r.s.tanks[tank.ID] = stored
	return nil
}

func (r tankRepo) CompareAndSwap(ctx context.Context, tank *domain.Tank, expectedVersion int64) (bool, error) {
	defer r.s.lock(ctx)()
	stored, ok := r.s.tanks[tank.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	r.s.tanks[tank.ID] = *tank
	return true, nil
}

type stockRepo struct{ s *Store }

func (r stockRepo) SaveDelivery(ctx context.Context, d *domain.Delivery) error {
	defer r.s.lock(ctx)()
	r.s.deliveries = append(r.s.deliveries, *d)
	return nil
}

func (r stockRepo) SaveMovement(ctx context.Context, m *domain.StockMovement) error {
	defer r.s.lock(ctx)()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r stockRepo) FindMovements(ctx context.Context, tankID string, limit int) ([]domain.StockMovement, error) {
	defer r.s.lock(ctx)()
	var out []domain.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].TankID != tankID {
			continue
		}
		out = append(out, r.s.movements[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type saleRepo struct{ s *Store }

func (r saleRepo) Save(ctx context.Context, sale *domain.Sale) error {
	defer r.s.lock(ctx)()
	r.s.sales = append(r.s.sales, *sale)
	return nil
}

func (r saleRepo) FindByShiftID(ctx context.Context, shiftID string) ([]domain.Sale, error) {
	defer r.s.lock(ctx)()
	var out []domain.Sale
	for _, sale := range r.s.sales {
		if sale.ShiftID == shiftID {
			out = append(out, sale)
		}
	}
	return out, nil
}

type paymentMethodRepo struct{ s *Store }

func (r paymentMethodRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.PaymentMethod, error) {
	defer r.s.lock(ctx)()
	var out []domain.PaymentMethod
	for _, id := range ids {
		if m, ok := r.s.paymentMethods[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type shiftRepo struct{ s *Store }

func (r shiftRepo) FindByID(ctx context.Context, id string) (*domain.Shift, error) {
	defer r.s.lock(ctx)()
	sh, ok := r.s.shifts[id]
	if !ok {
		return nil, nil
	}
	return &sh, nil
}

func (r shiftRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Shift, error) {
	if !r.s.inTx(ctx) {
		return nil, errLockOutsideTx
	}
	return r.FindByID(ctx, id)
}

func (r shiftRepo) FindByIDForShare(ctx context.Context, id string) (*domain.Shift, error) {
	return r.FindByIDForUpdate(ctx, id)
}

func (r shiftRepo) FindOpen(ctx context.Context) ([]domain.Shift, error) {
	defer r.s.lock(ctx)()
	var out []domain.Shift
	for _, sh := range r.s.shifts {
		if sh.Status == domain.ShiftStatusOpen {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (r shiftRepo) FindClosedSince(ctx context.Context, since time.Time) ([]domain.Shift, error) {
	defer r.s.lock(ctx)()
	var out []domain.Shift
	for _, sh := range r.s.shifts {
		if sh.Status == domain.ShiftStatusOpen || sh.ClosedAt == nil || sh.ClosedAt.Before(since) {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.Before(*out[j].ClosedAt) })
	return out, nil
}

func (r shiftRepo) Update(ctx context.Context, shift *domain.Shift) error {
	defer r.s.lock(ctx)()
	r.s.shifts[shift.ID] = *shift
	return nil
}

type registerRepo struct{ s *Store }

func (r registerRepo) Create(ctx context.Context, register *domain.CashRegister) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.registers {
		if existing.ShiftID == register.ShiftID {
			return domain.ErrAlreadyReconciled
		}
	}
	stored := *register
	stored.Details = append([]domain.PaymentDetail(nil), register.Details...)
	r.s.registers[register.ID] = stored
	return nil
}

func (r registerRepo) FindByShiftID(ctx context.Context, shiftID string) (*domain.CashRegister, error) {
	defer r.s.lock(ctx)()
	for _, reg := range r.s.registers {
		if reg.ShiftID == shiftID {
			return &reg, nil
		}
	}
	return nil, nil
}

func (r registerRepo) ExistsForShift(ctx context.Context, shiftID string) (bool, error) {
	reg, err := r.FindByShiftID(ctx, shiftID)
	return reg != nil, err
}

func (r registerRepo) FindClosedSince(ctx context.Context, since time.Time) ([]domain.CashRegister, error) {
	defer r.s.lock(ctx)()
	var out []domain.CashRegister
	for _, reg := range r.s.registers {
		if !reg.ClosedAt.Before(since) {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.Before(out[j].ClosedAt) })
	return out, nil
}

type debtRepo struct{ s *Store }

func (r debtRepo) CreateDebt(ctx context.Context, debt *domain.PompisteDebt) error {
	defer r.s.lock(ctx)()
	r.s.debts = append(r.s.debts, *debt)
	return nil
}

type alertRepo struct{ s *Store }

func sameEntity(a *string, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func (r alertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	defer r.s.lock(ctx)()
	if alert.Status == domain.AlertStatusActive {
		for _, a := range r.s.alerts {
			if a.Status == domain.AlertStatusActive && a.StationID == alert.StationID &&
				a.Type == alert.Type && sameEntity(a.RelatedEntityID, alert.RelatedEntityID) {
				return domain.ErrDuplicateActiveAlert
			}
		}
	}
	r.s.alerts[alert.ID] = *alert
	r.s.alertOrder = append(r.s.alertOrder, alert.ID)
	return nil
}

func (r alertRepo) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	defer r.s.lock(ctx)()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r alertRepo) Transition(ctx context.Context, alert *domain.Alert, from domain.AlertStatus) (bool, error) {
	defer r.s.lock(ctx)()
	stored, ok := r.s.alerts[alert.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = alert.Status
	stored.AcknowledgedAt, stored.AcknowledgedBy = alert.AcknowledgedAt, alert.AcknowledgedBy
	stored.ResolvedAt, stored.ResolvedBy = alert.ResolvedAt, alert.ResolvedBy
	r.s.alerts[alert.ID] = stored
	return true, nil
}

func (r alertRepo) ExistsActive(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID *string) (bool, error) {
	defer r.s.lock(ctx)()
	for _, a := range r.s.alerts {
		if a.Status != domain.AlertStatusActive || a.StationID != stationID || a.Type != alertType {
			continue
		}
		if relatedEntityID == nil || sameEntity(a.RelatedEntityID, relatedEntityID) {
			return true, nil
		}
	}
	return false, nil
}

func (r alertRepo) ResolveActiveByEntity(ctx context.Context, stationID string, alertType domain.AlertType, relatedEntityID string, at time.Time) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for id, a := range r.s.alerts {
		if a.StationID != stationID || a.Type != alertType || !sameEntity(a.RelatedEntityID, &relatedEntityID) {
			continue
		}
		if a.Status != domain.AlertStatusActive && a.Status != domain.AlertStatusAcknowledged {
			continue
		}
		resolvedAt := at
		a.Status = domain.AlertStatusResolved
		a.ResolvedAt = &resolvedAt
		r.s.alerts[id] = a
		n++
	}
	return n, nil
}

func (r alertRepo) CountActive(ctx context.Context, stationID string) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for _, a := range r.s.alerts {
		if a.Status == domain.AlertStatusActive && (stationID == "" || a.StationID == stationID) {
			n++
		}
	}
	return n, nil
}

func (r alertRepo) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	defer r.s.lock(ctx)()
	var out []domain.Alert
	for i := len(r.s.alertOrder) - 1; i >= 0; i-- {
		a := r.s.alerts[r.s.alertOrder[i]]
		if filter.StationID != "" && a.StationID != filter.StationID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, a.Status) {
			continue
		}
		out = append(out, a)
	}

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func containsStatus(statuses []domain.AlertStatus, s domain.AlertStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

type clientRepo struct{ s *Store }

func (r clientRepo) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r clientRepo) FindWithCreditLimit(ctx context.Context) ([]domain.Client, error) {
	defer r.s.lock(ctx)()
	var out []domain.Client
	for _, c := range r.s.clients {
		if c.Active && c.CreditLimit.IsPositive() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type maintenanceRepo struct{ s *Store }

func (r maintenanceRepo) FindPendingBefore(ctx context.Context, until time.Time) ([]domain.MaintenanceSchedule, error) {
	defer r.s.lock(ctx)()
	var out []domain.MaintenanceSchedule
	for _, m := range r.s.maintenance {
		if m.CompletedAt == nil && !m.ScheduledAt.After(until) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
