package app

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/memory"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Storage bundles every repository port over one backend.
type Storage struct {
	Tx             ports.TxManager
	Tanks          ports.TankRepository
	Stock          ports.StockRepository
	Sales          ports.SaleRepository
	PaymentMethods ports.PaymentMethodRepository
	Shifts         ports.ShiftRepository
	Registers      ports.CashRegisterRepository
	Debts          ports.DebtLedger
	Alerts         ports.AlertRepository
	Clients        ports.ClientRepository
	Maintenance    ports.MaintenanceRepository
	Users          ports.UserRepository

	// SQL is nil for the memory driver.
	SQL *sql.DB
	// Memory is set only for the memory driver.
	Memory *memory.Store
}

// OpenStorage connects the configured driver and, for postgres, runs the
// migrations when AutoMigrate is set.
func OpenStorage(cfg config.DatabaseConfig, log *zap.Logger) (*Storage, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("Using in-memory storage; data is lost on restart")
		return memoryStorage(memory.New()), nil
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}

	db, err := postgres.NewConnection(cfg.URL, postgres.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogQueries:      cfg.LogQueries,
	}, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	return &Storage{
		Tx:             postgres.NewTxManager(db, log),
		Tanks:          postgres.NewTankRepository(db, log),
		Stock:          postgres.NewStockRepository(db, log),
		Sales:          postgres.NewSaleRepository(db, log),
		PaymentMethods: postgres.NewPaymentMethodRepository(db),
		Shifts:         postgres.NewShiftRepository(db, log),
		Registers:      postgres.NewCashRegisterRepository(db, log),
		Debts:          postgres.NewDebtRepository(db, log),
		Alerts:         postgres.NewAlertRepository(db, log),
		Clients:        postgres.NewClientRepository(db, log),
		Maintenance:    postgres.NewMaintenanceRepository(db),
		Users:          postgres.NewUserRepository(db, log),
		SQL:            sqlDB,
	}, nil
}

func memoryStorage(store *memory.Store) *Storage {
	return &Storage{
		Tx:             store,
		Tanks:          store.Tanks(),
		Stock:          store.Stock(),
		Sales:          store.Sales(),
		PaymentMethods: store.PaymentMethods(),
		Shifts:         store.Shifts(),
		Registers:      store.CashRegisters(),
		Debts:          store.DebtLedger(),
		Alerts:         store.Alerts(),
		Clients:        store.Clients(),
		Maintenance:    store.Maintenance(),
		Users:          store.Users(),
		Memory:         store,
	}
}

func (s *Storage) Close() error {
	if s.SQL != nil {
		return s.SQL.Close()
	}
	return nil
}
