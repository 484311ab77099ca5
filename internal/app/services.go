package app

import (
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/internal/service/alert"
	"github.com/seu-repo/sigec-posto/internal/service/email"
	"github.com/seu-repo/sigec-posto/internal/service/inventory"
	"github.com/seu-repo/sigec-posto/internal/service/reconciliation"
	"github.com/seu-repo/sigec-posto/internal/service/shift"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Services is the business layer wired over one storage backend.
type Services struct {
	Inventory      ports.InventoryService
	Alerts         ports.AlertService
	Engine         *alert.Engine
	Sweeper        *alert.Sweeper
	Reconciliation ports.ReconciliationService
	Shifts         ports.ShiftService
}

func NewServices(cfg *config.Config, st *Storage, co *Coordination, mq queue.MessageQueue, log *zap.Logger) *Services {
	alerts := alert.NewService(st.Alerts, st.Users, co.Cache, mq, cfg.Cache.AlertCountTTL, log)
	engine := alert.NewEngine(alert.EngineDeps{
		Alerts:      alerts,
		AlertRepo:   st.Alerts,
		Tanks:       st.Tanks,
		Shifts:      st.Shifts,
		Registers:   st.Registers,
		Sales:       st.Sales,
		Clients:     st.Clients,
		Maintenance: st.Maintenance,
	}, cfg.Alerts.Thresholds(), log)

	return &Services{
		Inventory: inventory.NewService(inventory.Deps{
			Tx:             st.Tx,
			Tanks:          st.Tanks,
			Stock:          st.Stock,
			Sales:          st.Sales,
			PaymentMethods: st.PaymentMethods,
			Shifts:         st.Shifts,
		}, mq, log),
		Alerts:  alerts,
		Engine:  engine,
		Sweeper: alert.NewSweeper(engine, co.Locker, cfg.Alerts.SweepInterval, cfg.Alerts.SweepLockTTL, log),
		Reconciliation: reconciliation.NewService(reconciliation.Deps{
			Tx:             st.Tx,
			Shifts:         st.Shifts,
			Sales:          st.Sales,
			PaymentMethods: st.PaymentMethods,
			Registers:      st.Registers,
			Debts:          st.Debts,
		}, mq, log),
		Shifts: shift.NewService(st.Tx, st.Shifts, st.Registers, st.Users, log),
	}
}

// NewSubscriber wires the event-driven checks and, when e-mail is enabled,
// the alert notifier. The notifier is returned so its breaker can be
// reported by the health service.
func NewSubscriber(cfg *config.Config, svc *Services, st *Storage, log *zap.Logger) (*alert.Subscriber, *email.AlertNotifier, error) {
	sub := alert.NewSubscriber(svc.Engine, st.Tanks, st.Shifts, st.Registers, log)

	ecfg := cfg.Notification.Email
	if !ecfg.Enabled {
		return sub, nil, nil
	}

	sender, err := email.NewService(&email.Config{
		Provider:       ecfg.Provider,
		FromEmail:      ecfg.From,
		FromName:       ecfg.FromName,
		SendGridAPIKey: ecfg.APIKey,
		SMTPHost:       ecfg.SMTP.Host,
		SMTPPort:       ecfg.SMTP.Port,
		SMTPUsername:   ecfg.SMTP.Username,
		SMTPPassword:   ecfg.SMTP.Password,
		SMTPUseTLS:     ecfg.SMTP.UseTLS,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	notifier := email.NewAlertNotifier(sender, ecfg.Recipients, ecfg.BaseURL,
		circuitbreaker.FromConfig("alert-email", cfg.CircuitBreaker), log)

	minPriority := domain.AlertPriority(ecfg.MinPriority)
	if minPriority.Rank() == 0 {
		minPriority = domain.AlertPriorityHigh
	}
	return sub.WithNotifier(notifier, minPriority), notifier, nil
}
