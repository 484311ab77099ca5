// Package memory is an in-process implementation of the storage ports used
// for local development and tests. A transaction holds the store-wide mutex
// for its whole duration and restores a snapshot on rollback, which gives
// the same serialization the postgres row locks give per tank.
package memory

import (
	"context"
	"sync"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type Store struct {
	mu sync.Mutex

	tanks          map[string]domain.Tank
	deliveries     []domain.Delivery
	movements      []domain.StockMovement
	paymentMethods map[string]domain.PaymentMethod
	sales          []domain.Sale
	shifts         map[string]domain.Shift
	registers      map[string]domain.CashRegister
	debts          []domain.PompisteDebt
	alerts         map[string]domain.Alert
	alertOrder     []string
	clients        map[string]domain.Client
	maintenance    map[string]domain.MaintenanceSchedule
	users          map[string]domain.User
}

func New() *Store {
	return &Store{
		tanks:          make(map[string]domain.Tank),
		paymentMethods: make(map[string]domain.PaymentMethod),
		shifts:         make(map[string]domain.Shift),
		registers:      make(map[string]domain.CashRegister),
		alerts:         make(map[string]domain.Alert),
		clients:        make(map[string]domain.Client),
		maintenance:    make(map[string]domain.MaintenanceSchedule),
		users:          make(map[string]domain.User),
	}
}

type txKey struct{ s *Store }

func (s *Store) inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{s}).(bool)
	return ok
}

// lock acquires the store mutex unless ctx already runs inside one of this
// store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx implements ports.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{s}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	tanks       map[string]domain.Tank
	deliveries  []domain.Delivery
	movements   []domain.StockMovement
	sales       []domain.Sale
	shifts      map[string]domain.Shift
	registers   map[string]domain.CashRegister
	debts       []domain.PompisteDebt
	alerts      map[string]domain.Alert
	alertOrder  []string
	clients     map[string]domain.Client
	maintenance map[string]domain.MaintenanceSchedule
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		tanks:       cloneMap(s.tanks),
		deliveries:  append([]domain.Delivery(nil), s.deliveries...),
		movements:   append([]domain.StockMovement(nil), s.movements...),
		sales:       append([]domain.Sale(nil), s.sales...),
		shifts:      cloneMap(s.shifts),
		registers:   cloneMap(s.registers),
		debts:       append([]domain.PompisteDebt(nil), s.debts...),
		alerts:      cloneMap(s.alerts),
		alertOrder:  append([]string(nil), s.alertOrder...),
		clients:     cloneMap(s.clients),
		maintenance: cloneMap(s.maintenance),
	}
}

func (s *Store) restore(snap snapshot) {
	s.tanks = snap.tanks
	s.deliveries = snap.deliveries
	s.movements = snap.movements
	s.sales = snap.sales
	s.shifts = snap.shifts
	s.registers = snap.registers
	s.debts = snap.debts
	s.alerts = snap.alerts
	s.alertOrder = snap.alertOrder
	s.clients = snap.clients
	s.maintenance = snap.maintenance
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Seed helpers used by tests and the dev bootstrap.

func (s *Store) PutTank(t domain.Tank) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tanks[t.ID] = t
}

func (s *Store) PutPaymentMethod(m domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethods[m.ID] = m
}

func (s *Store) PutShift(sh domain.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[sh.ID] = sh
}

func (s *Store) PutSale(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
}

func (s *Store) PutClient(c domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) PutMaintenance(m domain.MaintenanceSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance[m.ID] = m
}

func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Debts returns a copy of every recorded debt.
func (s *Store) Debts() []domain.PompisteDebt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PompisteDebt(nil), s.debts...)
}

// Deliveries returns a copy of every recorded delivery.
func (s *Store) Deliveries() []domain.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Delivery(nil), s.deliveries...)
}

// Registers returns the number of stored cash registers.
func (s *Store) Registers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registers)
}

// Repository views over the store

func (s *Store) Tanks() ports.TankRepository                   { return tankRepo{s} }
func (s *Store) Stock() ports.StockRepository                  { return stockRepo{s} }
func (s *Store) Sales() ports.SaleRepository                   { return saleRepo{s} }
func (s *Store) PaymentMethods() ports.PaymentMethodRepository { return paymentMethodRepo{s} }
func (s *Store) Shifts() ports.ShiftRepository                 { return shiftRepo{s} }
func (s *Store) CashRegisters() ports.CashRegisterRepository   { return registerRepo{s} }
func (s *Store) DebtLedger() ports.DebtLedger                  { return debtRepo{s} }
func (s *Store) Alerts() ports.AlertRepository                 { return alertRepo{s} }
func (s *Store) Clients() ports.ClientRepository               { return clientRepo{s} }
func (s *Store) Maintenance() ports.MaintenanceRepository      { return maintenanceRepo{s} }
func (s *Store) Users() ports.UserRepository                   { return userRepo{s} }

var _ ports.TxManager = (*Store)(nil)
