package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// constraints are the invariants the schema enforces on top of the
// application checks.
var constraints = []string{
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_tanks_level') THEN
			ALTER TABLE tanks ADD CONSTRAINT chk_tanks_level
				CHECK (current_level >= 0 AND current_level <= capacity);
		END IF;
	END $$`,
	// At most one ACTIVE alert per (station, type, related entity).
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_alerts_active_condition
		ON alerts (station_id, type, COALESCE(related_entity_id, ''))
		WHERE status = 'ACTIVE'`,
}

// RunMigrations creates or updates the schema and installs the constraints.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Tank{},
		&domain.Delivery{},
		&domain.StockMovement{},
		&domain.PaymentMethod{},
		&domain.Shift{},
		&domain.Sale{},
		&domain.SalePayment{},
		&domain.CashRegister{},
		&domain.PaymentDetail{},
		&domain.PompisteDebt{},
		&domain.Alert{},
		&domain.Client{},
		&domain.MaintenanceSchedule{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}
